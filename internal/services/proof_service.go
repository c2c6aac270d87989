package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

// ProofURLPrefix is the route stored proofs are served from.
const ProofURLPrefix = "/proofs/files"

// ProofService accepts base64-encoded uploads, stores them and keeps a
// record of who uploaded what.
type ProofService struct {
	proofs  store.ProofRepository
	storage *FileStorage
	maxSize int64
	now     func() time.Time
}

func NewProofService(repos *store.Repositories, storage *FileStorage, maxSize int64) *ProofService {
	return &ProofService{
		proofs:  repos.Proofs,
		storage: storage,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func proofURL(storedName string) string {
	return path.Join(ProofURLPrefix, storedName)
}

// decodeUpload accepts plain base64 or a data URL.
func decodeUpload(data string) ([]byte, error) {
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	data = strings.TrimSpace(data)
	if b, err := base64.StdEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}

// Upload stores a proof document and returns its URL.
func (s *ProofService) Upload(ctx context.Context, req models.UploadFileRequest) (models.MessageResponse, error) {
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		return models.MessageResponse{}, validationf("File name is required.")
	}
	uploader := fund.NormalizeEmail(req.UploadedBy)
	if uploader == "" {
		return models.MessageResponse{}, validationf("Uploader email is required.")
	}

	data, err := decodeUpload(req.Data)
	if err != nil {
		return models.MessageResponse{}, validationf("File upload failed: data is not valid base64.")
	}
	if len(data) == 0 {
		return models.MessageResponse{}, validationf("File upload failed: file is empty.")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return models.MessageResponse{}, validationf("File upload failed: file exceeds %d bytes.", s.maxSize)
	}

	stored, err := s.storage.Save(data, name)
	if err != nil {
		return models.MessageResponse{}, fmt.Errorf("File upload failed: %w", err)
	}

	proof := &models.Proof{
		FileName:   name,
		FileType:   strings.TrimSpace(req.FileType),
		MimeType:   strings.TrimSpace(req.MimeType),
		StoredName: stored,
		UploadedBy: uploader,
		UploadDate: s.now(),
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		return models.MessageResponse{}, err
	}

	log.Info().Str("file", name).Str("uploadedBy", uploader).Int("bytes", len(data)).Msg("proof uploaded")
	return models.MessageResponse{Message: "File uploaded successfully.", URL: proofURL(stored)}, nil
}

// List returns proofs newest first with their URLs filled in. Unless all
// is set, only the proofs uploaded by email are returned.
func (s *ProofService) List(ctx context.Context, email string, all bool) ([]models.Proof, error) {
	key := fund.NormalizeEmail(email)
	if !all && key == "" {
		return nil, validationf("Email parameter is required.")
	}

	proofs, err := s.proofs.ListProofs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Proof, 0, len(proofs))
	for _, p := range proofs {
		if !all && fund.NormalizeEmail(p.UploadedBy) != key {
			continue
		}
		p.FileURL = proofURL(p.StoredName)
		out = append(out, p)
	}
	return out, nil
}
