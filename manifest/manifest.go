// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package manifest loads container layouts described in YAML.
//
// A manifest names the container constants and lists the blocks of the
// directory and of every stream:
//
//	block_size: 4096
//	num_blocks: 64
//	directory:
//	  blocks: [1]
//	  length: 120
//	streams:
//	  - name: header
//	    blocks: [10-12, 50]
//	    length: 12388
//
// A block list entry is either a block index or an inclusive "first-last"
// range.
package manifest

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/dacapoday/msf"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Manifest struct {
	BlockSize uint32   `yaml:"block_size"`
	NumBlocks uint32   `yaml:"num_blocks"`
	Directory Stream   `yaml:"directory"`
	Streams   []Stream `yaml:"streams"`
}

type Stream struct {
	Name   string `yaml:"name,omitempty"`
	Blocks Blocks `yaml:"blocks"`
	Length uint32 `yaml:"length"`
}

// Blocks is a list of container block indices.
type Blocks []uint32

// maxBlocks is the block count of a full 32-bit container at the smallest
// block size. No valid layout names a block index at or above it, nor needs
// more blocks for one stream.
const maxBlocks = 1 << 32 / 512

func (blocks *Blocks) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errors.Errorf("line %d: blocks must be a sequence", node.Line)
	}
	list := make(Blocks, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return errors.Errorf("line %d: block must be a number or a range", item.Line)
		}
		first, last, err := parseRange(item.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d", item.Line)
		}
		if n := uint64(last) - uint64(first) + 1; uint64(len(list))+n > maxBlocks {
			return errors.Errorf("line %d: more than %d blocks", item.Line, maxBlocks)
		}
		for block := uint64(first); block <= uint64(last); block++ {
			list = append(list, uint32(block))
		}
	}
	*blocks = list
	return nil
}

func parseRange(s string) (first, last uint32, err error) {
	lo, hi, isRange := strings.Cut(s, "-")
	if first, err = parseBlock(lo); err != nil {
		return
	}
	last = first
	if !isRange {
		return
	}
	if last, err = parseBlock(hi); err != nil {
		return
	}
	if last < first {
		err = errors.Errorf("range %q is reversed", s)
	}
	return
}

func parseBlock(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.Errorf("invalid block %q", s)
	}
	if n >= maxBlocks {
		return 0, errors.Errorf("block %d beyond the 32-bit address space", n)
	}
	return uint32(n), nil
}

// Parse decodes a manifest and checks that it describes a valid layout.
// Unknown keys are rejected.
func Parse(data []byte) (m *Manifest, err error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m = new(Manifest)
	if err = dec.Decode(m); err != nil {
		return nil, errors.Wrap(msf.ErrInvalidFormat, err.Error())
	}
	if _, err = m.Layout(); err != nil {
		return nil, err
	}
	return
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return m, nil
}

// Layout returns the validated container layout.
func (m *Manifest) Layout() (*msf.Layout, error) {
	layout := &msf.Layout{
		SuperBlock: msf.SuperBlock{
			BlockSize:         m.BlockSize,
			NumBlocks:         m.NumBlocks,
			NumDirectoryBytes: m.Directory.Length,
		},
		DirectoryBlocks: m.Directory.Blocks,
		StreamSizes:     make([]uint32, len(m.Streams)),
		StreamMap:       make([][]uint32, len(m.Streams)),
	}

	names := make(map[string]int, len(m.Streams))
	for i, s := range m.Streams {
		if s.Name != "" {
			if j, dup := names[s.Name]; dup {
				return nil, errors.Wrapf(msf.ErrInvalidFormat, "stream name %q used by %d and %d", s.Name, j, i)
			}
			names[s.Name] = i
		}
		layout.StreamSizes[i] = s.Length
		layout.StreamMap[i] = s.Blocks
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return layout, nil
}

// Index resolves a stream by name, or by its decimal index.
func (m *Manifest) Index(ref string) (int, error) {
	for i, s := range m.Streams {
		if s.Name != "" && s.Name == ref {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(m.Streams) {
		return i, nil
	}
	return -1, errors.Wrapf(msf.ErrNoStream, "%q", ref)
}

// Name returns the display name of the stream at index.
func (m *Manifest) Name(index int) string {
	if index >= 0 && index < len(m.Streams) && m.Streams[index].Name != "" {
		return m.Streams[index].Name
	}
	return "#" + strconv.Itoa(index)
}
