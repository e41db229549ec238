package pdfx

import (
	"bytes"
	"context"
	"errors"
	"io"

	pdflib "github.com/ledongthuc/pdf"
)

// Document is the source of truth for a loaded PDF. Data is immutable once
// loaded; Pages and FullText are derived exactly once, in page order.
type Document struct {
	Name      string
	Data      []byte
	PageCount int
	Pages     []string
	FullText  string
}

// Open loads a PDF from an in-memory buffer and extracts the text of every
// page in order. An encrypted buffer without a password fails with
// ErrPasswordRequired; a wrong password fails with ErrIncorrectPassword.
// Any other parse failure surfaces as *LoadError.
func Open(ctx context.Context, name string, data []byte, password string, report func(int)) (*Document, error) {
	prog := NewProgress(report)
	prog.Loaded(int64(len(data)), int64(len(data)))
	return open(ctx, name, data, password, prog)
}

// OpenReader reads the document bytes from r, reporting load progress
// proportional to bytes consumed when size is known, then extracts as Open.
func OpenReader(ctx context.Context, name string, r io.Reader, size int64, password string, report func(int)) (*Document, error) {
	prog := NewProgress(report)
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	chunk := make([]byte, 256*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			prog.Loaded(int64(buf.Len()), size)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Cause: err}
		}
	}
	return open(ctx, name, buf.Bytes(), password, prog)
}

func open(ctx context.Context, name string, data []byte, password string, prog *Progress) (*Document, error) {
	reader, err := newReader(data, password)
	if err != nil {
		return nil, classifyOpenError(err, password)
	}
	prog.LoadDone()

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	// Strictly in page order: page i+1 is not touched until page i's text is
	// appended, which keeps progress monotone and concatenation order-correct.
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			prog.PageDone(i, pageCount)
			continue
		}
		pages = append(pages, LineText(pageTokens(page)))
		prog.PageDone(i, pageCount)
	}
	prog.Done()

	return &Document{
		Name:      name,
		Data:      data,
		PageCount: pageCount,
		Pages:     pages,
		FullText:  JoinPages(pages),
	}, nil
}

func newReader(data []byte, password string) (*pdflib.Reader, error) {
	ra := bytes.NewReader(data)
	size := int64(len(data))
	if password == "" {
		return pdflib.NewReader(ra, size)
	}
	// The library calls pw repeatedly until it returns ""; offering the
	// password exactly once enforces the retry-once protocol.
	offered := false
	return pdflib.NewReaderEncrypted(ra, size, func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	})
}

func classifyOpenError(err error, password string) error {
	if isEncryptionError(err) {
		if password == "" {
			return ErrPasswordRequired
		}
		return ErrIncorrectPassword
	}
	return &LoadError{Cause: err}
}

func isEncryptionError(err error) bool {
	return errors.Is(err, pdflib.ErrInvalidPassword)
}
