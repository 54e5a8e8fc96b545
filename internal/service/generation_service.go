package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/model/dto"
	"github.com/qs3c/bio_go_server/internal/repository"
)

const (
	DefaultStyle    = "creative"
	DefaultPlatform = "instagram"
)

// BioGenerator 文本生成后端
type BioGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type GenerationService struct {
	userRepo       *repository.UserRepository
	generationRepo *repository.GenerationRepository
	quotaService   *QuotaService
	generator      BioGenerator
}

func NewGenerationService(
	userRepo *repository.UserRepository,
	generationRepo *repository.GenerationRepository,
	quotaService *QuotaService,
	generator BioGenerator,
) *GenerationService {
	return &GenerationService{
		userRepo:       userRepo,
		generationRepo: generationRepo,
		quotaService:   quotaService,
		generator:      generator,
	}
}

// Generate 生成成功并落库后才扣减免费额度
func (s *GenerationService) Generate(ctx context.Context, userID int64, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	name := strings.TrimSpace(req.Name)
	niche := strings.TrimSpace(req.Niche)
	if name == "" || niche == "" {
		return nil, validationError("name and niche are required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	admission, err := s.quotaService.CheckAdmission(ctx, user.ID, user.IsPremium)
	if err != nil {
		return nil, err
	}
	if !admission.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrQuotaExceeded, admission.Message)
	}

	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		platform = DefaultPlatform
	}

	bio, err := s.generator.Complete(ctx, BuildPrompt(name, niche, req.Style, platform))
	if err != nil {
		slog.ErrorContext(ctx, "bio generation failed", "user_id", user.ID, "error", err)
		return nil, upstreamError("generate bio", err)
	}

	generation := &model.Generation{
		UserID:   user.ID,
		BioText:  bio,
		Platform: platform,
	}
	if err := s.generationRepo.Create(ctx, generation); err != nil {
		return nil, err
	}

	if !user.IsPremium {
		if _, err := s.quotaService.RecordUsage(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "record usage failed", "user_id", user.ID, "generation_id", generation.ID, "error", err)
			return nil, err
		}
	}

	return &dto.GenerateResponse{
		Bio:       bio,
		IsPremium: user.IsPremium,
	}, nil
}

// BuildPrompt 拼装生成提示词
func BuildPrompt(name, niche, style, platform string) string {
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	if strings.TrimSpace(platform) == "" {
		platform = DefaultPlatform
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s bio for %s.\n", style, platform)
	fmt.Fprintf(&b, "Name/handle: %s\n", name)
	fmt.Fprintf(&b, "Niche/topic: %s\n\n", niche)
	b.WriteString("Rules:\n")
	b.WriteString("- At most 150 characters\n")
	b.WriteString("- Use relevant emojis\n")
	b.WriteString("- Be catchy and unique\n")
	b.WriteString("- Match the tone to the niche\n")
	b.WriteString("- No quotation marks\n\n")
	b.WriteString("Reply with the bio only, no explanation.")
	return b.String()
}
