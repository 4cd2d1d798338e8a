package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	YAML Format = iota
	JSON
)

func (f Format) Extension() string {
	if f == JSON {
		return "json"
	}
	return "yaml"
}

var ErrUnsupportedFormat = errors.New("unsupported document format")

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return YAML, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads, decodes and validates a document. The result has defaults
// applied.
func Load(path string) (GuildParams, error) {
	format, err := FormatOf(path)
	if err != nil {
		return GuildParams{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return GuildParams{}, fmt.Errorf("could not read %s: %w", path, err)
	}
	p, err := Decode(data, format)
	if err != nil {
		return GuildParams{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func Decode(data []byte, format Format) (GuildParams, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return GuildParams{}, fmt.Errorf("could not parse %s: %w", format.Extension(), err)
	}

	var p GuildParams
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &p,
	})
	if err != nil {
		return GuildParams{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return GuildParams{}, fmt.Errorf("could not decode guild document: %w", err)
	}

	p = p.WithDefaults()
	if err := Validate(p); err != nil {
		return GuildParams{}, err
	}
	return p, nil
}

func Marshal(p GuildParams, format Format) ([]byte, error) {
	if format == JSON {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(p); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes p to path in the format matching its extension. An existing file
// is only replaced when overwrite is set.
func Save(path string, p GuildParams, overwrite bool) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(p, format)
	if err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
