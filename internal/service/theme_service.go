package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"surveyforge/internal/apperror"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ThemeService manages the saved theme library
type ThemeService struct {
	themeRepo repository.ThemeRepo
	log       *logger.Logger
}

// NewThemeService creates a new theme service
func NewThemeService(themeRepo repository.ThemeRepo, log *logger.Logger) *ThemeService {
	return &ThemeService{themeRepo: themeRepo, log: log}
}

// Create saves a named theme
func (s *ThemeService) Create(ctx context.Context, theme *model.SavedTheme) (string, error) {
	theme.Name = strings.TrimSpace(theme.Name)
	if theme.Name == "" {
		return "", apperror.InvalidInput("el tema necesita un nombre")
	}
	if err := ValidateTheme(&theme.Config); err != nil {
		return "", err
	}

	id, err := s.themeRepo.Create(ctx, theme)
	if err != nil {
		return "", fmt.Errorf("failed to create theme: %w", err)
	}
	s.log.Info(ctx, "theme saved", map[string]interface{}{"theme_id": id, "name": theme.Name})
	return id, nil
}

// List returns saved themes, newest first
func (s *ThemeService) List(ctx context.Context) ([]*model.SavedTheme, error) {
	themes, err := s.themeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

// Delete removes a saved theme. Surveys keep their own copy of the config.
func (s *ThemeService) Delete(ctx context.Context, id string) error {
	if err := s.themeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return nil
}

// ValidateTheme checks that every color set on the theme is a hex color
func ValidateTheme(cfg *model.ThemeConfig) error {
	colors := map[string]string{
		"primaryColor":    cfg.PrimaryColor,
		"backgroundColor": cfg.BackgroundColor,
		"textColor":       cfg.TextColor,
		"activeColor":     cfg.ActiveColor,
	}
	var problems []string
	for field, value := range colors {
		if value != "" && !hexColor.MatchString(value) {
			problems = append(problems, fmt.Sprintf("%s: color inválido %q", field, value))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return apperror.WithDetails(apperror.InvalidInput("tema inválido"), problems...)
	}
	return nil
}
