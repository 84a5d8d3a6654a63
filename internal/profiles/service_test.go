package profiles

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/hirepath/internal/apperrors"
)

type fakeStore struct {
	objects map[string][]byte
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *fakeStore) PresignedGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example/" + key + "?sig=abc", nil
}

func newProfilesService() (*Service, *fakeStore) {
	store := newFakeStore()
	svc := NewService(
		NewMemoryProfileRepository(),
		NewMemoryResumeRepository(),
		NewMemoryExperienceRepository(),
		NewMemoryEducationRepository(),
		NewMemoryCertificationRepository(),
		store,
	)
	return svc, store
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{"React", " TypeScript", "", "  React", "react"})
	assert.Equal(t, []string{"React", "TypeScript"}, got)
}

func TestUpsertProfileSkillsRoundTrip(t *testing.T) {
	svc, _ := newProfilesService()
	ctx := context.Background()

	saved, err := svc.UpsertMine(ctx, "u1", ProfileInput{
		Headline:        "Backend engineer",
		YearsExperience: 6,
		Skills:          []string{"React", "TypeScript", " React"},
		OpenToWork:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"React", "TypeScript"}, saved.Skills)

	got, err := svc.GetMine(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, saved.Skills, got.Skills)
	assert.Equal(t, saved.ID, got.ID)

	// Second save reuses the row.
	again, err := svc.UpsertMine(ctx, "u1", ProfileInput{Headline: "Still backend", YearsExperience: 7})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, 7, again.YearsExperience)

	_, err = svc.UpsertMine(ctx, "u1", ProfileInput{YearsExperience: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetMineBeforeFirstSave(t *testing.T) {
	svc, _ := newProfilesService()
	_, err := svc.GetMine(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func uploadResume(t *testing.T, svc *Service, userID, name string) *Resume {
	t.Helper()
	res, err := svc.SaveResume(context.Background(), userID, ResumeUpload{
		Title:       name,
		FileName:    name + ".pdf",
		ContentType: "application/pdf",
		Size:        4,
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	return res
}

func TestSaveResume(t *testing.T) {
	svc, store := newProfilesService()
	ctx := context.Background()

	first := uploadResume(t, svc, "u1", "cv")
	assert.True(t, first.IsDefault, "first upload becomes the default")
	assert.True(t, strings.HasPrefix(first.ObjectKey, "resumes/u1/"))
	assert.Len(t, store.objects, 1)

	second := uploadResume(t, svc, "u1", "cv-v2")
	assert.False(t, second.IsDefault)

	url, err := svc.ResumeURL(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.Contains(t, url, first.ObjectKey)

	_, err = svc.ResumeURL(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.SaveResume(ctx, "u1", ResumeUpload{Title: "empty"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteResumePromotesMostRecent(t *testing.T) {
	svc, store := newProfilesService()
	ctx := context.Background()

	first := uploadResume(t, svc, "u1", "cv-v1")
	second := uploadResume(t, svc, "u1", "cv-v2")
	third := uploadResume(t, svc, "u1", "cv-v3")

	require.NoError(t, svc.DeleteResume(ctx, "u1", first.ID))
	assert.Contains(t, store.removed, first.ObjectKey)

	rest, err := svc.ListResumes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rest, 2)
	byID := map[string]*Resume{rest[0].ID: rest[0], rest[1].ID: rest[1]}
	assert.True(t, byID[third.ID].IsDefault, "most recent remaining is promoted")
	assert.False(t, byID[second.ID].IsDefault)

	// Deleting a non-default leaves the default untouched.
	require.NoError(t, svc.DeleteResume(ctx, "u1", second.ID))
	rest, err = svc.ListResumes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].IsDefault)

	assert.ErrorIs(t, svc.DeleteResume(ctx, "u2", third.ID), apperrors.ErrNotFound)
}

func TestOwnsResume(t *testing.T) {
	svc, _ := newProfilesService()
	ctx := context.Background()

	res := uploadResume(t, svc, "u1", "cv")

	ok, err := svc.OwnsResume(ctx, res.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.OwnsResume(ctx, res.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.OwnsResume(ctx, "missing", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExperienceCRUD(t *testing.T) {
	svc, _ := newProfilesService()
	ctx := context.Background()

	e, err := svc.AddExperience(ctx, "u1", &Experience{Title: "Engineer", Company: "Acme", Order: 1})
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	e.Title = "Senior Engineer"
	updated, err := svc.UpdateExperience(ctx, "u1", e)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", updated.Title)

	_, err = svc.UpdateExperience(ctx, "u2", e)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.AddExperience(ctx, "u1", &Experience{Title: "", Company: "Acme"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	list, err := svc.ListExperiences(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.DeleteExperience(ctx, "u2", e.ID), apperrors.ErrNotFound)
	require.NoError(t, svc.DeleteExperience(ctx, "u1", e.ID))

	list, err = svc.ListExperiences(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEducationOrdering(t *testing.T) {
	svc, _ := newProfilesService()
	ctx := context.Background()

	second, err := svc.AddEducation(ctx, "u1", &Education{School: "MIT", Order: 2})
	require.NoError(t, err)
	first, err := svc.AddEducation(ctx, "u1", &Education{School: "TU Berlin", Order: 1})
	require.NoError(t, err)

	list, err := svc.ListEducations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestCertificationCRUD(t *testing.T) {
	svc, _ := newProfilesService()
	ctx := context.Background()

	c, err := svc.AddCertification(ctx, "u1", &Certification{Name: "CKA", Issuer: "CNCF", IssueDate: time.Now()})
	require.NoError(t, err)

	c.Issuer = "The Linux Foundation"
	_, err = svc.UpdateCertification(ctx, "u1", c)
	require.NoError(t, err)

	_, err = svc.AddCertification(ctx, "u1", &Certification{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.NoError(t, svc.DeleteCertification(ctx, "u1", c.ID))
	list, err := svc.ListCertifications(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
