package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	NoTopic    = "No Topic"
	NoSubtopic = "No Subtopic"
)

type ScopeEntry struct {
	Topic     string
	Subtopics []string
}

// ScopeMap 有序的 topic -> subtopic 列表映射，序列化为 JSON 对象时保持插入顺序
type ScopeMap []ScopeEntry

func (m ScopeMap) index(topic string) int {
	for i := range m {
		if m[i].Topic == topic {
			return i
		}
	}
	return -1
}

// Subtopics 返回 topic 下登记的 subtopic
func (m ScopeMap) Subtopics(topic string) ([]string, bool) {
	i := m.index(topic)
	if i < 0 {
		return nil, false
	}
	return m[i].Subtopics, true
}

// Add 登记 topic（不存在时追加），subtopic 非空时去重追加
func (m ScopeMap) Add(topic, subtopic string) ScopeMap {
	i := m.index(topic)
	if i < 0 {
		m = append(m, ScopeEntry{Topic: topic, Subtopics: []string{}})
		i = len(m) - 1
	}
	if subtopic == "" {
		return m
	}
	for _, s := range m[i].Subtopics {
		if s == subtopic {
			return m
		}
	}
	m[i].Subtopics = append(m[i].Subtopics, subtopic)
	return m
}

func (m ScopeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Topic)
		if err != nil {
			return nil, err
		}
		subs := e.Subtopics
		if subs == nil {
			subs = []string{}
		}
		val, err := json.Marshal(subs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *ScopeMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("scope: expected object, got %v", tok)
	}
	out := ScopeMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		topic, ok := tok.(string)
		if !ok {
			return fmt.Errorf("scope: expected topic key, got %v", tok)
		}
		var subs []string
		if err := dec.Decode(&subs); err != nil {
			return err
		}
		if subs == nil {
			subs = []string{}
		}
		out = append(out, ScopeEntry{Topic: topic, Subtopics: subs})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
