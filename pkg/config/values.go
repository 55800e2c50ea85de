package config

import (
	"encoding/json"

	simple "github.com/bitly/go-simplejson"
)

// Value 单个配置节点的读取视图
type Value interface {
	Bool(def bool) bool
	Int(def int) int
	String(def string) string
	Float64(def float64) float64
	StringSlice(def []string) []string
	Scan(v interface{}) error
	Bytes() []byte
}

type jsonValues struct {
	sj *simple.Json
}

type jsonValue struct {
	*simple.Json
}

// newValues 构建配置JSON树，入参必须已经是JSON字节
func newValues(data []byte) (*jsonValues, error) {
	sj := simple.New()
	if err := sj.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &jsonValues{sj: sj}, nil
}

func (j *jsonValues) Get(path ...string) Value {
	return &jsonValue{j.sj.GetPath(path...)}
}

func (j *jsonValues) Scan(v interface{}) error {
	b, err := j.sj.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (j *jsonValues) Bytes() []byte {
	b, _ := j.sj.MarshalJSON()
	return b
}

func (j *jsonValue) Bool(def bool) bool {
	b, err := j.Json.Bool()
	if err != nil {
		return def
	}
	return b
}

func (j *jsonValue) Int(def int) int {
	i, err := j.Json.Int()
	if err != nil {
		return def
	}
	return i
}

func (j *jsonValue) String(def string) string {
	s, err := j.Json.String()
	if err != nil {
		return def
	}
	return s
}

func (j *jsonValue) Float64(def float64) float64 {
	f, err := j.Json.Float64()
	if err != nil {
		return def
	}
	return f
}

func (j *jsonValue) StringSlice(def []string) []string {
	ss, err := j.Json.StringArray()
	if err != nil {
		return def
	}
	return ss
}

func (j *jsonValue) Scan(v interface{}) error {
	b, err := j.Json.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (j *jsonValue) Bytes() []byte {
	b, _ := j.Json.MarshalJSON()
	return b
}
