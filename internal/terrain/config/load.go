package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"gopkg.in/yaml.v2"
)

// Load reads settings from src, a local path or any go-getter source
// (https://, s3::, git::, ...). Fields absent from the file keep their
// default values.
func Load(ctx context.Context, src string) (Config, error) {
	cfg := DefaultConfig()
	if err := FetchInto(ctx, src, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// FetchInto reads src and decodes it into v, as YAML for .yaml/.yml
// sources and JSON otherwise.
func FetchInto(ctx context.Context, src string, v any) error {
	data, err := Fetch(ctx, src)
	if err != nil {
		return err
	}
	return Decode(data, formatOf(src), v)
}

// Fetch returns the bytes behind src. Existing local files are read
// directly; everything else goes through go-getter into a temp dir.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if fi, err := os.Stat(src); err == nil && !fi.IsDir() {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src, err)
		}
		return data, nil
	}

	dir, err := os.MkdirTemp("", "terrain-fetch-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working dir: %w", err)
	}

	dst := filepath.Join(dir, "source"+filepath.Ext(sourcePath(src)))
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("read fetched %s: %w", src, err)
	}
	return data, nil
}

// Decode unmarshals data in the given format ("yaml" or "json").
func Decode(data []byte, format string, v any) error {
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	}
	return nil
}

func formatOf(src string) string {
	switch strings.ToLower(path.Ext(sourcePath(src))) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// sourcePath strips a go-getter forced prefix ("s3::") and any query string.
func sourcePath(src string) string {
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return src
}
