package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/observability"
	"github.com/codeview-ai/codeview-api/internal/repository"
)

var (
	// ErrResumeTooLarge indicates the upload exceeded the configured limit.
	ErrResumeTooLarge = errors.New("resume exceeds maximum allowed size")
	// ErrResumeTypeNotAllowed indicates the detected MIME type is not a PDF.
	ErrResumeTypeNotAllowed = errors.New("resume must be a PDF document")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ResumeService validates and stores candidate resumes ahead of a session.
type ResumeService interface {
	Upload(ctx context.Context, slug, candidateID string, file *multipart.FileHeader) (dto.ResumeResponse, error)
	GetByCandidate(ctx context.Context, slug, candidateID string) (dto.ResumeResponse, error)
}

type resumeService struct {
	storage    FileStorage
	interviews repository.InterviewRepository
	repo       repository.ResumeRepository
	logger     zerolog.Logger
	maxSize    int64
	tracer     trace.Tracer
}

// NewResumeService constructs a resume service.
func NewResumeService(storage FileStorage, interviews repository.InterviewRepository, repo repository.ResumeRepository, maxSizeMB int, logger zerolog.Logger) ResumeService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &resumeService{
		storage:    storage,
		interviews: interviews,
		repo:       repo,
		logger:     logger.With().Str("component", "resume_service").Logger(),
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/internal/service/resume"),
	}
}

func (s *resumeService) Upload(ctx context.Context, slug, candidateID string, file *multipart.FileHeader) (dto.ResumeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resume.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("resume.max_bytes", s.maxSize))
	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ResumeResponse{}, err
	}
	span.SetAttributes(
		attribute.String("resume.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("resume.request_size", file.Size),
	)

	interview, err := s.interviews.GetBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interview lookup failed")
		return dto.ResumeResponse{}, ErrInterviewNotFound
	}

	if file.Size > s.maxSize {
		observability.ResumeUploads().WithLabelValues("rejected_size").Inc()
		span.RecordError(ErrResumeTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ResumeResponse{}, ErrResumeTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.ResumeResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.ResumeResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.ResumeUploads().WithLabelValues("rejected_size").Inc()
		span.RecordError(ErrResumeTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ResumeResponse{}, ErrResumeTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("resume.detected_mime", mime.String()))
	if !mime.Is("application/pdf") {
		observability.ResumeUploads().WithLabelValues("rejected_type").Inc()
		span.RecordError(ErrResumeTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.ResumeResponse{}, ErrResumeTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeResumeName(file.Filename)
	span.SetAttributes(
		attribute.String("resume.sanitized_name", sanitizedName),
		attribute.Int64("resume.size_bytes", int64(buf.Len())),
	)

	url, err := s.storage.Upload(ctx, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.ResumeUploads().WithLabelValues("rejected_storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.ResumeResponse{}, err
	}

	record := models.Resume{
		InterviewID: interview.ID,
		CandidateID: candidateID,
		FileName:    sanitizedName,
		URL:         url,
		MimeType:    "application/pdf",
		SizeBytes:   int64(buf.Len()),
		Checksum:    hex.EncodeToString(checksum[:]),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ResumeResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	observability.ResumeUploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.ResumeResponse{
		URL:       record.URL,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
	}, nil
}

func (s *resumeService) GetByCandidate(ctx context.Context, slug, candidateID string) (dto.ResumeResponse, error) {
	interview, err := s.interviews.GetBySlug(ctx, slug)
	if err != nil {
		return dto.ResumeResponse{}, ErrInterviewNotFound
	}

	resume, err := s.repo.GetByCandidate(ctx, interview.ID, candidateID)
	if err != nil {
		return dto.ResumeResponse{}, err
	}

	return dto.ResumeResponse{
		URL:       resume.URL,
		FileName:  resume.FileName,
		MimeType:  resume.MimeType,
		SizeBytes: resume.SizeBytes,
		Checksum:  resume.Checksum,
	}, nil
}

func sanitizeResumeName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("resume-%d", time.Now().Unix())
	}
	return base + ".pdf"
}
