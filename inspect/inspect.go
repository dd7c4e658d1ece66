// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package inspect exports decoded records as plain data, for debugging and
// for golden test fixtures.
//
// Integers become int64 or uint64, byte blocks []byte, nested records and
// named branch slots maps, and repeated records slices of maps. Fields
// contributed by an extending branch point appear alongside their
// parent's. Inline sub-objects are not repeated, as their fields are
// already present in the parent.
package inspect

import (
	"encoding/base64"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/no1xsyzy/bytestory"
)

// encMode is configured with Core Deterministic Encoding (RFC 8949
// §4.2), so the same record always exports to the same bytes
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("inspect: CBOR encoder initialization failed: " + err.Error())
	}
}

// Tree returns r as nested maps keyed by field name
func Tree(r *bytestory.Record) map[string]interface{} {
	names := r.Fields()
	m := make(map[string]interface{}, len(names))
	for _, n := range names {
		v, _ := r.Get(n)
		m[n] = plain(v)
	}
	return m
}

func plain(v bytestory.Value) interface{} {
	switch v := v.(type) {
	case *bytestory.Record:
		return Tree(v)
	case []*bytestory.Record:
		l := make([]interface{}, len(v))
		for i, r := range v {
			l[i] = Tree(r)
		}
		return l
	default:
		return v
	}
}

// CBOR encodes Tree(r) as deterministic CBOR
func CBOR(r *bytestory.Record) ([]byte, error) {
	return encMode.Marshal(Tree(r))
}

// YAML renders r as a YAML document with fields in encoding order. Byte
// blocks are written as !!binary scalars.
func YAML(r *bytestory.Record) ([]byte, error) {
	return yaml.Marshal(node(r))
}

func node(r *bytestory.Record) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range r.Fields() {
		v, _ := r.Get(name)
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			valueNode(v))
	}
	return n
}

func valueNode(v bytestory.Value) *yaml.Node {
	switch v := v.(type) {
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v, 10)}
	case []byte:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(v)}
	case *bytestory.Record:
		return node(v)
	case []*bytestory.Record:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, r := range v {
			seq.Content = append(seq.Content, node(r))
		}
		return seq
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
