package ast

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage matches every UnsupportedLanguageError.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrParse matches every ParseError.
	ErrParse = errors.New("parse error")
	// ErrTreeBuild is returned when the grammar produced no usable tree.
	ErrTreeBuild = errors.New("tree build error")
	// ErrInvalidNode reports a node whose span violates ordering rules.
	ErrInvalidNode = errors.New("invalid node")
	// ErrNoParser is returned when a registry has nothing for a language.
	ErrNoParser = errors.New("no parser registered")
)

// UnsupportedLanguageError carries the exact input that failed to resolve.
type UnsupportedLanguageError struct {
	Input string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Input)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// ParseError represents a syntax error found in a parsed file.
type ParseError struct {
	Path     string   `json:"path,omitempty"`
	Language Language `json:"language"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<buffer>"
	}
	return fmt.Sprintf("parse %s (%s) at %d:%d: %s", loc, e.Language, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

func invalidNode(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidNode, fmt.Sprintf(format, args...))
}
