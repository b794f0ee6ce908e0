package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zoobzio/stencil"
	"github.com/zoobzio/stencil/examples/countries"
)

func TestCodecFor(t *testing.T) {
	for _, name := range []string{"json", "yaml", "msgpack", "bson"} {
		if _, err := codecFor(name); err != nil {
			t.Errorf("codecFor(%q) error: %v", name, err)
		}
	}
	if _, err := codecFor("xml"); err == nil {
		t.Error("codecFor(xml) should return error")
	}
}

func TestWrite_JSON(t *testing.T) {
	mapped := []*countries.Country{{
		Name:        "Ukraine",
		Capital:     "Kyiv",
		Coordinates: &countries.Coordinates{Latitude: 49, Longitude: 32},
	}}

	var buf bytes.Buffer
	if err := write(&buf, "json", mapped); err != nil {
		t.Fatalf("write() error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "[") || !strings.HasSuffix(out, "\n") {
		t.Errorf("write() = %q, want an indented JSON array", out)
	}
	if !strings.Contains(out, `"latlng": {`) {
		t.Errorf("write() = %s, want latlng key", out)
	}
}

func TestConvert_RoundTripThroughBSON(t *testing.T) {
	t.Setenv("STENCIL_LOG_LEVEL", "disabled")

	dir := t.TempDir()
	src := filepath.Join(dir, "ukraine.json")
	if err := os.WriteFile(src, []byte(`{"name":"Ukraine","capital":"Kyiv","currencies":[{"code":"UAH"}],"latlng":[49,32]}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	// json file -> bson output
	t.Setenv("STENCIL_FORMAT", "bson")
	var bsonOut bytes.Buffer
	rootCmd.SetOut(&bsonOut)
	rootCmd.SetArgs([]string{"convert", src, "--config", "", "--from", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert json error: %v", err)
	}

	bsonFile := filepath.Join(dir, "ukraine.bson")
	if err := os.WriteFile(bsonFile, bsonOut.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	// bson file -> json output
	t.Setenv("STENCIL_FORMAT", "json")
	var jsonOut bytes.Buffer
	rootCmd.SetOut(&jsonOut)
	rootCmd.SetArgs([]string{"convert", bsonFile, "--config", "", "--from", "bson"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert bson error: %v", err)
	}

	decoded, err := mustCodec(t, "json").Decode(jsonOut.Bytes())
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	items := decoded.([]any)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if name, _ := items[0].(*stencil.Bag).Get("name"); name != "Ukraine" {
		t.Errorf("name = %v, want Ukraine", name)
	}
}

func mustCodec(t *testing.T, name string) stencil.Codec {
	t.Helper()
	c, err := codecFor(name)
	if err != nil {
		t.Fatalf("codecFor(%q) error: %v", name, err)
	}
	return c
}
