package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeview-ai/codeview-api/internal/models"
)

type storageStub struct {
	uploaded bytes.Buffer
	err      error
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

type resumeRepoStub struct {
	record models.Resume
	err    error
}

func (r *resumeRepoStub) Create(ctx context.Context, resume *models.Resume) error {
	if r.err != nil {
		return r.err
	}
	r.record = *resume
	return nil
}

func (r *resumeRepoStub) GetByCandidate(ctx context.Context, interviewID uint, candidateID string) (models.Resume, error) {
	return r.record, nil
}

var pdfStub = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newResumeFixture(storage FileStorage, repo *resumeRepoStub, maxMB int) ResumeService {
	interviews := &fakeInterviewRepo{interview: models.Interview{ID: 7, Slug: "backend-screen-ab12"}}
	return NewResumeService(storage, interviews, repo, maxMB, testLogger())
}

func TestResumeServiceUpload(t *testing.T) {
	storage := &storageStub{}
	repo := &resumeRepoStub{}
	svc := newResumeFixture(storage, repo, 5)

	file := buildFileHeader(t, "Jane Doe CV.pdf", pdfStub)
	resp, err := svc.Upload(context.Background(), "backend-screen-ab12", "cand-1", file)
	require.NoError(t, err)
	require.Equal(t, "jane-doe-cv.pdf", resp.FileName)
	require.Equal(t, "application/pdf", resp.MimeType)
	require.Contains(t, resp.URL, "jane-doe-cv.pdf")
	require.NotEmpty(t, resp.Checksum)

	require.Equal(t, uint(7), repo.record.InterviewID)
	require.Equal(t, "cand-1", repo.record.CandidateID)
	require.Equal(t, int64(len(pdfStub)), repo.record.SizeBytes)
}

func TestResumeServiceRejectsNonPDF(t *testing.T) {
	svc := newResumeFixture(&storageStub{}, &resumeRepoStub{}, 5)

	file := buildFileHeader(t, "resume.txt", []byte("just some text"))
	_, err := svc.Upload(context.Background(), "backend-screen-ab12", "cand-1", file)
	require.ErrorIs(t, err, ErrResumeTypeNotAllowed)
}

func TestResumeServiceRejectsOversize(t *testing.T) {
	svc := newResumeFixture(&storageStub{}, &resumeRepoStub{}, 1)

	file := buildFileHeader(t, "resume.pdf", bytes.Repeat([]byte("a"), 2*1024*1024))
	_, err := svc.Upload(context.Background(), "backend-screen-ab12", "cand-1", file)
	require.ErrorIs(t, err, ErrResumeTooLarge)
}

func TestResumeServicePersistFailure(t *testing.T) {
	repo := &resumeRepoStub{err: context.DeadlineExceeded}
	svc := newResumeFixture(&storageStub{}, repo, 5)

	file := buildFileHeader(t, "resume.pdf", pdfStub)
	_, err := svc.Upload(context.Background(), "backend-screen-ab12", "cand-1", file)
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
