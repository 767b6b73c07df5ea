package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Parser reads JSON AST files.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 256MB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 256 * 1024 * 1024,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Entry is a top-level node of a JSON AST file, peeked but not decoded.
type Entry struct {
	Type         ast.Kind
	Name         string
	Applications []string
	Raw          json.RawMessage
	Loc          ast.Location
}

// HasApplication returns true if the entry lists the given application.
func (e Entry) HasApplication(application string) bool {
	return slices.Contains(e.Applications, application)
}

// Decode decodes the entry into a full node.
func (e Entry) Decode() (ast.Node, error) {
	return DecodeNode(e.Raw, e.Loc)
}

// Parse reads the file at path and splits it into entries.
// Locations use the base name of the file.
func (p *Parser) Parse(path string) ([]Entry, error) {
	fileName := filepath.Base(path)

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{File: fileName}, err, "failed to access file")
	}
	if fileInfo.Size() > p.maxFileSize {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeIO, ast.Location{File: fileName},
			"file size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{File: fileName}, err, "failed to read file")
	}
	return p.ParseBytes(data, fileName)
}

// ParseBytes splits an in-memory JSON AST array into entries.
func (p *Parser) ParseBytes(data []byte, fileName string) ([]Entry, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeIO, ast.Location{File: fileName},
			"data size %d exceeds maximum %d bytes", len(data), p.maxFileSize)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, ast.Location{File: fileName}, err,
			"expected a JSON array of AST nodes").
			WithSuggestion("JSON AST files hold a top-level array")
	}

	root := ast.Location{File: fileName}
	entries := make([]Entry, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type         ast.Kind `json:"type"`
			Name         any      `json:"name"`
			Applications []string `json:"applications"`
		}
		loc := root.Index(i)
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid top-level node").
				WithContext(mlangErrors.NodeContext(raw))
		}
		if head.Type == "" {
			return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, loc, "node has no 'type' field").
				WithContext(mlangErrors.NodeContext(raw))
		}
		name, _ := head.Name.(string)
		entries = append(entries, Entry{
			Type:         head.Type,
			Name:         name,
			Applications: head.Applications,
			Raw:          raw,
			Loc:          loc,
		})
	}
	return entries, nil
}

// ParseNodes decodes every node of an in-memory JSON AST array.
func (p *Parser) ParseNodes(data []byte, fileName string) ([]ast.Node, error) {
	entries, err := p.ParseBytes(data, fileName)
	if err != nil {
		return nil, err
	}
	nodes := make([]ast.Node, 0, len(entries))
	for _, entry := range entries {
		node, err := entry.Decode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// DecodeNode decodes a single JSON node.
func DecodeNode(raw json.RawMessage, loc ast.Location) (ast.Node, error) {
	obj, err := newObject(raw, loc)
	if err != nil {
		return nil, err
	}
	return obj.build()
}

// decodeAny decodes JSON keeping numbers as json.Number.
func decodeAny(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
