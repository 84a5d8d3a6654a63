package profiles

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/pkg/logger"
)

const presignExpiry = 15 * time.Minute

// ObjectStore is the slice of the object storage layer resumes need.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service owns candidate profiles, their sub-resources and resume files.
type Service struct {
	profiles ProfileRepository
	resumes  ResumeRepository
	exps     ExperienceRepository
	edus     EducationRepository
	certs    CertificationRepository
	store    ObjectStore
}

func NewService(profiles ProfileRepository, resumes ResumeRepository, exps ExperienceRepository, edus EducationRepository, certs CertificationRepository, store ObjectStore) *Service {
	return &Service{profiles: profiles, resumes: resumes, exps: exps, edus: edus, certs: certs, store: store}
}

// ProfileInput carries the writable profile fields.
type ProfileInput struct {
	Headline        string
	Summary         string
	Location        string
	ContactLinks    map[string]string
	YearsExperience int
	Skills          []string
	OpenToWork      bool
}

// UpsertMine saves the caller's profile, normalizing the skill list.
func (s *Service) UpsertMine(ctx context.Context, userID string, in ProfileInput) (*Profile, error) {
	if in.YearsExperience < 0 {
		return nil, fmt.Errorf("%w: yearsExperience must not be negative", apperrors.ErrInvalidInput)
	}
	return s.profiles.Upsert(ctx, &Profile{
		UserID:          userID,
		Headline:        strings.TrimSpace(in.Headline),
		Summary:         in.Summary,
		Location:        strings.TrimSpace(in.Location),
		ContactLinks:    in.ContactLinks,
		YearsExperience: in.YearsExperience,
		Skills:          NormalizeSkills(in.Skills),
		OpenToWork:      in.OpenToWork,
	})
}

// GetMine returns the caller's profile; ErrNotFound before the first save.
func (s *Service) GetMine(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: no profile saved yet", apperrors.ErrNotFound)
	}
	return p, nil
}

// GetByUser returns another user's profile, or nil when absent. Used by the
// applications layer for the advanced company filters.
func (s *Service) GetByUser(ctx context.Context, userID string) (*Profile, error) {
	return s.profiles.GetByUser(ctx, userID)
}

// ResumeUpload describes one incoming resume file.
type ResumeUpload struct {
	Title       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	MakeDefault bool
}

// SaveResume streams the file to object storage and records its metadata.
// The first resume a user uploads becomes the default automatically.
func (s *Service) SaveResume(ctx context.Context, userID string, in ResumeUpload) (*Resume, error) {
	if in.FileName == "" || in.Size <= 0 {
		return nil, fmt.Errorf("%w: file name and size are required", apperrors.ErrInvalidInput)
	}
	existing, err := s.resumes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := "resumes/" + userID + "/" + uuid.NewString()
	if err := s.store.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("%w: store resume: %v", apperrors.ErrUpstreamFailure, err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}
	res := &Resume{
		UserID:      userID,
		Title:       title,
		ObjectKey:   key,
		FileName:    in.FileName,
		FileSize:    in.Size,
		ContentType: in.ContentType,
	}
	if err := s.resumes.Insert(ctx, res); err != nil {
		return nil, err
	}
	if in.MakeDefault || len(existing) == 0 {
		if err := s.resumes.SetDefault(ctx, userID, res.ID); err != nil {
			return nil, err
		}
		res.IsDefault = true
	}
	return res, nil
}

// DeleteResume removes the file and its record. When the deleted resume was
// the default, the most recent remaining one is promoted.
func (s *Service) DeleteResume(ctx context.Context, userID, id string) error {
	res, err := s.ownedResume(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, res.ObjectKey); err != nil {
		// Metadata removal proceeds; the orphaned object is only storage waste.
		logger.Warnf("remove resume object %s: %v", res.ObjectKey, err)
	}
	if err := s.resumes.Delete(ctx, id); err != nil {
		return err
	}
	if !res.IsDefault {
		return nil
	}
	remaining, err := s.resumes.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	return s.resumes.SetDefault(ctx, userID, remaining[0].ID)
}

func (s *Service) ListResumes(ctx context.Context, userID string) ([]*Resume, error) {
	return s.resumes.ListByUser(ctx, userID)
}

// ResumeURL returns a short-lived download link for the caller's own resume.
func (s *Service) ResumeURL(ctx context.Context, userID, id string) (string, error) {
	res, err := s.ownedResume(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignedGet(ctx, res.ObjectKey, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: presign resume: %v", apperrors.ErrUpstreamFailure, err)
	}
	return url, nil
}

// OwnsResume reports whether the resume exists and belongs to the user.
func (s *Service) OwnsResume(ctx context.Context, resumeID, userID string) (bool, error) {
	res, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return false, err
	}
	return res != nil && res.UserID == userID, nil
}

func (s *Service) ownedResume(ctx context.Context, userID, id string) (*Resume, error) {
	res, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil || res.UserID != userID {
		return nil, fmt.Errorf("%w: resume %s", apperrors.ErrNotFound, id)
	}
	return res, nil
}

func (s *Service) AddExperience(ctx context.Context, userID string, e *Experience) (*Experience, error) {
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Company) == "" {
		return nil, fmt.Errorf("%w: title and company are required", apperrors.ErrInvalidInput)
	}
	e.ID = ""
	e.UserID = userID
	if err := s.exps.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateExperience(ctx context.Context, userID string, e *Experience) (*Experience, error) {
	existing, err := s.exps.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.UserID != userID {
		return nil, fmt.Errorf("%w: experience %s", apperrors.ErrNotFound, e.ID)
	}
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Company) == "" {
		return nil, fmt.Errorf("%w: title and company are required", apperrors.ErrInvalidInput)
	}
	e.UserID = userID
	e.CreatedAt = existing.CreatedAt
	if err := s.exps.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) DeleteExperience(ctx context.Context, userID, id string) error {
	existing, err := s.exps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return fmt.Errorf("%w: experience %s", apperrors.ErrNotFound, id)
	}
	return s.exps.Delete(ctx, id)
}

func (s *Service) ListExperiences(ctx context.Context, userID string) ([]*Experience, error) {
	return s.exps.ListByUser(ctx, userID)
}

func (s *Service) AddEducation(ctx context.Context, userID string, e *Education) (*Education, error) {
	if strings.TrimSpace(e.School) == "" {
		return nil, fmt.Errorf("%w: school is required", apperrors.ErrInvalidInput)
	}
	e.ID = ""
	e.UserID = userID
	if err := s.edus.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateEducation(ctx context.Context, userID string, e *Education) (*Education, error) {
	existing, err := s.edus.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.UserID != userID {
		return nil, fmt.Errorf("%w: education %s", apperrors.ErrNotFound, e.ID)
	}
	if strings.TrimSpace(e.School) == "" {
		return nil, fmt.Errorf("%w: school is required", apperrors.ErrInvalidInput)
	}
	e.UserID = userID
	e.CreatedAt = existing.CreatedAt
	if err := s.edus.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) DeleteEducation(ctx context.Context, userID, id string) error {
	existing, err := s.edus.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return fmt.Errorf("%w: education %s", apperrors.ErrNotFound, id)
	}
	return s.edus.Delete(ctx, id)
}

func (s *Service) ListEducations(ctx context.Context, userID string) ([]*Education, error) {
	return s.edus.ListByUser(ctx, userID)
}

func (s *Service) AddCertification(ctx context.Context, userID string, c *Certification) (*Certification, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	c.ID = ""
	c.UserID = userID
	if err := s.certs.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCertification(ctx context.Context, userID string, c *Certification) (*Certification, error) {
	existing, err := s.certs.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.UserID != userID {
		return nil, fmt.Errorf("%w: certification %s", apperrors.ErrNotFound, c.ID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	c.UserID = userID
	c.CreatedAt = existing.CreatedAt
	if err := s.certs.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCertification(ctx context.Context, userID, id string) error {
	existing, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return fmt.Errorf("%w: certification %s", apperrors.ErrNotFound, id)
	}
	return s.certs.Delete(ctx, id)
}

func (s *Service) ListCertifications(ctx context.Context, userID string) ([]*Certification, error) {
	return s.certs.ListByUser(ctx, userID)
}
