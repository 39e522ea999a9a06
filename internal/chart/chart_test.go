package chart

import (
	"bytes"
	"image/png"
	"testing"

	"datadesk/m/domain"
	"datadesk/m/internal/store"
)

func TestRoleChartRendersPNG(t *testing.T) {
	var buf bytes.Buffer
	counts := []store.RoleCount{
		{Role: domain.RoleAdmin, Count: 1},
		{Role: domain.RoleUser, Count: 4},
	}

	if err := RoleChart(&buf, counts); err != nil {
		t.Fatalf("RoleChart: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		t.Fatalf("empty image bounds %v", b)
	}
}

func TestRoleChartPlaceholder(t *testing.T) {
	var buf bytes.Buffer

	if err := RoleChart(&buf, nil); err != nil {
		t.Fatalf("RoleChart: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode placeholder png: %v", err)
	}
}
