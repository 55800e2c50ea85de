package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Encoder 配置格式编解码器
type Encoder interface {
	Encode(v interface{}) ([]byte, error)
	Decode(d []byte, v interface{}) error
	String() string
}

type yamlEncoder struct{}

func (yamlEncoder) Encode(v interface{}) ([]byte, error) { return yaml.Marshal(v) }
func (yamlEncoder) Decode(d []byte, v interface{}) error { return yaml.Unmarshal(d, v) }
func (yamlEncoder) String() string                       { return "yaml" }

type tomlEncoder struct{}

func (tomlEncoder) Encode(v interface{}) ([]byte, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
func (tomlEncoder) Decode(d []byte, v interface{}) error { return toml.Unmarshal(d, v) }
func (tomlEncoder) String() string                       { return "toml" }

type jsonEncoder struct{}

func (jsonEncoder) Encode(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonEncoder) Decode(d []byte, v interface{}) error { return json.Unmarshal(d, v) }
func (jsonEncoder) String() string                       { return "json" }

// EncoderForPath 根据文件扩展名选择编解码器
func EncoderForPath(path string) (Encoder, error) {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "yaml", "yml":
		return yamlEncoder{}, nil
	case "toml":
		return tomlEncoder{}, nil
	case "json":
		return jsonEncoder{}, nil
	default:
		return nil, errors.Errorf("unsupported config format: %s", path)
	}
}
