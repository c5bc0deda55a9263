package shared

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
)

// multipartMemory is the part of a multipart form kept in memory; larger
// forms spill to disk inside mime/multipart.
const multipartMemory = 1 << 20

// Form is the decoded input of one request. Close removes the spooled upload
// files.
type Form struct {
	Query url.Values
	Body  url.Values
	Files map[string]*contract.File
	// Size is the declared body length, or the number of body bytes read
	// when no length was declared.
	Size int64

	spooled []string
}

// ReadForm decodes the query, a url-encoded or multipart body and its files.
// Every uploaded file is copied into a temporary file named by
// contract.File.TempPath; an empty file part is reported as
// contract.UploadNoFile.
func ReadForm(r *http.Request) (*Form, error) {
	form := &Form{
		Query: r.URL.Query(),
		Body:  url.Values{},
		Files: map[string]*contract.File{},
		Size:  r.ContentLength,
	}

	var counter *countingReader
	if r.ContentLength < 0 && r.Body != nil {
		counter = &countingReader{ReadCloser: r.Body}
		r.Body = counter
		defer func() { form.Size = counter.n }()
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		for key, values := range r.MultipartForm.Value {
			form.Body[key] = values
		}
		for key, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			file, err := form.spool(headers[len(headers)-1])
			if err != nil {
				form.Close()
				return nil, err
			}
			form.Files[key] = file
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		form.Body = r.PostForm
	}

	return form, nil
}

// Request converts the form into a dispatch request.
func (f *Form) Request(sessionSource contract.SessionSource, challenge contract.ChallengeSource) *contract.Request {
	return &contract.Request{
		Query:     f.Query,
		Body:      f.Body,
		Files:     f.Files,
		BodySize:  f.Size,
		Session:   sessionSource,
		Challenge: challenge,
	}
}

// Close removes the spooled files.
func (f *Form) Close() {
	for _, path := range f.spooled {
		_ = os.Remove(path)
	}
	f.spooled = nil
}

func (f *Form) spool(header *multipart.FileHeader) (*contract.File, error) {
	if header.Size == 0 {
		return &contract.File{Name: header.Filename, Error: contract.UploadNoFile}, nil
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", header.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "tablaturi-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create upload spool: %w", err)
	}
	f.spooled = append(f.spooled, dst.Name())

	size, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return nil, fmt.Errorf("spool upload %q: %w", header.Filename, err)
	}

	return &contract.File{
		Name:     header.Filename,
		TempPath: dst.Name(),
		Size:     size,
		Error:    contract.UploadOK,
	}, nil
}

// countingReader counts the bytes read from a body of unknown length.
type countingReader struct {
	io.ReadCloser
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}
