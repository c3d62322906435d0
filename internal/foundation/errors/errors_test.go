package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sergey.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "sergey.yaml" {
			t.Errorf("expected context file=sergey.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := NotFoundError("imports directory missing").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryNotFound) {
			t.Error("expected error to have not_found category")
		}
		if !err.IsFatal() {
			t.Error("expected not found error to be fatal")
		}
	})

	t.Run("Error string", func(t *testing.T) {
		err := WrapError(errors.New("disk full"), CategoryFileSystem, "failed to write").Build()
		want := "[filesystem:error] failed to write: disk full"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, CategoryCompile, "import cycle").
		Warning().
		WithContext("file", "index.html").
		WithContextMap(ErrorContext{"chain": "a.html -> a.html"}).
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if chain, _ := err.Context().GetString("chain"); chain != "a.html -> a.html" {
		t.Errorf("unexpected chain context %q", chain)
	}
}

func TestAsClassified_WrappedChain(t *testing.T) {
	inner := CompileError("import depth exceeded").Build()
	wrapped := fmt.Errorf("compile index.html: %w", inner)

	got, ok := AsClassified(wrapped)
	if !ok {
		t.Fatal("expected classified error in chain")
	}
	if got.Category() != CategoryCompile {
		t.Errorf("expected compile category, got %s", got.Category())
	}
	if GetCategory(errors.New("plain")) != CategoryInternal {
		t.Error("unclassified errors should default to internal")
	}
	if GetSeverity(wrapped) != SeverityError {
		t.Errorf("expected error severity, got %s", GetSeverity(wrapped))
	}
}

func TestClassifiedError_IsSentinel(t *testing.T) {
	sentinel := CompileError("import cycle").Build()
	err := fmt.Errorf("page: %w", CompileError("import cycle").WithContext("key", "a.html").Build())

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to match by category and message")
	}
	if errors.Is(err, CompileError("other").Build()) {
		t.Error("different message must not match")
	}
}

func TestClassifiedError_WithContextCopies(t *testing.T) {
	base := NewError(CategoryRuntime, "watch failed").Build()
	derived := base.WithContext("path", "/site")

	if _, ok := base.Context().Get("path"); ok {
		t.Error("WithContext must not modify the original error")
	}
	if p, _ := derived.Context().GetString("path"); p != "/site" {
		t.Errorf("expected path context, got %q", p)
	}
}
