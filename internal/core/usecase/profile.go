package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const DefaultUserID = "default"

type SkillExtractor interface {
	ExtractSkills(text string) []string
}

type ProfileUseCase struct {
	store     ports.ProfileStore
	storage   ports.ObjectStorage
	extractor ports.ResumeExtractor
	skills    SkillExtractor
	now       func() time.Time
}

func NewProfileUseCase(
	store ports.ProfileStore,
	storage ports.ObjectStorage,
	extractor ports.ResumeExtractor,
	skills SkillExtractor,
) *ProfileUseCase {
	return &ProfileUseCase{
		store:     store,
		storage:   storage,
		extractor: extractor,
		skills:    skills,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ProfileUseCase) Save(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	profile.UserID = normalizeUserID(profile.UserID)
	profile.Preferences.TechStack = mergeSkills(nil, profile.Preferences.TechStack)
	profile.Preferences.CompanySize = strings.ToLower(strings.TrimSpace(profile.Preferences.CompanySize))
	profile.UpdatedAt = uc.now()

	if err := uc.store.SaveProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &profile, nil
}

// Get returns an empty profile for unknown users.
func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	userID = normalizeUserID(userID)
	profile, err := uc.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return &domain.UserProfile{
				UserID:      userID,
				Preferences: domain.ProfilePreferences{TechStack: []string{}},
			}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// ImportResume stores the uploaded file, extracts its text and merges the
// skills found there into the profile's tech stack.
func (uc *ProfileUseCase) ImportResume(ctx context.Context, userID, filename string, body io.Reader) (*domain.UserProfile, error) {
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import resume", fmt.Errorf("resume body is required"))
	}
	userID = normalizeUserID(userID)

	key := resumeStorageKey(userID, filename)
	if err := uc.storage.Save(ctx, key, body); err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("extract resume text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import resume", fmt.Errorf("resume contains no text"))
	}

	profile, err := uc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Preferences.TechStack = mergeSkills(profile.Preferences.TechStack, uc.skills.ExtractSkills(text))
	profile.UpdatedAt = uc.now()

	if err := uc.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (uc *ProfileUseCase) Count(ctx context.Context) (int, error) {
	n, err := uc.store.CountProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func normalizeUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

func resumeStorageKey(userID, filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	return filepath.Join("resumes", safePathComponent(userID), uuid.NewString()+"_"+safePathComponent(name))
}

func safePathComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// mergeSkills appends additions to base, skipping blanks and case-insensitive duplicates.
func mergeSkills(base, additions []string) []string {
	out := make([]string, 0, len(base)+len(additions))
	seen := make(map[string]struct{}, len(base)+len(additions))
	for _, list := range [][]string{base, additions} {
		for _, skill := range list {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, skill)
		}
	}
	return out
}
