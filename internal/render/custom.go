package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"evalgo.org/hostconf/internal/projection"
)

var (
	// ErrTemplateTooLarge is returned for caller templates over the size limit.
	ErrTemplateTooLarge = errors.New("template too large")

	// ErrOutputTooLarge is returned when a caller template produces more
	// output than allowed.
	ErrOutputTooLarge = errors.New("rendered output too large")

	// ErrInvalidTemplate is returned when a caller template does not parse.
	ErrInvalidTemplate = errors.New("invalid template")
)

// CustomOptions bounds the execution of a caller-supplied template.
type CustomOptions struct {
	MaxTemplateBytes int
	MaxOutputBytes   int
	Timeout          time.Duration
}

// DefaultCustomOptions returns the limits used when none are configured.
func DefaultCustomOptions() CustomOptions {
	return CustomOptions{
		MaxTemplateBytes: 64 << 10,
		MaxOutputBytes:   1 << 20,
		Timeout:          2 * time.Second,
	}
}

// RenderCustom parses body as a template and executes it against view.
//
// Caller templates only see the escaping helpers (yaml, xml). Output is
// capped at MaxOutputBytes and execution is abandoned once Timeout or ctx
// expires.
func RenderCustom(ctx context.Context, body []byte, view projection.View, opts CustomOptions) ([]byte, error) {
	def := DefaultCustomOptions()
	if opts.MaxTemplateBytes <= 0 {
		opts.MaxTemplateBytes = def.MaxTemplateBytes
	}
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = def.MaxOutputBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}

	if len(body) > opts.MaxTemplateBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTemplateTooLarge, len(body), opts.MaxTemplateBytes)
	}

	tmpl, err := template.New("custom").
		Funcs(escapeFuncMap()).
		Option("missingkey=error").
		Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	w := &boundedWriter{ctx: ctx, limit: opts.MaxOutputBytes}
	done := make(chan error, 1)
	go func() {
		done <- tmpl.Execute(w, view)
	}()

	select {
	case err := <-done:
		switch {
		case errors.Is(err, ErrOutputTooLarge):
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrOutputTooLarge, opts.MaxOutputBytes)
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		return w.buf.Bytes(), nil
	case <-ctx.Done():
		// The writer fails every further write, so the goroutine exits at
		// the next output.
		return nil, ctx.Err()
	}
}

// boundedWriter buffers up to limit bytes and fails once the limit is hit
// or ctx is done.
type boundedWriter struct {
	ctx   context.Context
	limit int
	buf   bytes.Buffer
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	if w.buf.Len()+len(p) > w.limit {
		return 0, ErrOutputTooLarge
	}
	return w.buf.Write(p)
}
