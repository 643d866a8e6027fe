// Package handlers provides HTTP handlers for the meal plan API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	"github.com/nutriplan/mealengine/internal/ports/inbound"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

// MealPlanHandlers handles meal plan API requests.
type MealPlanHandlers struct {
	service  inbound.MealPlannerService
	store    outbound.PlanStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMealPlanHandlers creates a new meal plan handlers instance.
func NewMealPlanHandlers(
	service inbound.MealPlannerService,
	store outbound.PlanStore,
	logger *zap.Logger,
) *MealPlanHandlers {
	return &MealPlanHandlers{
		service:  service,
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// GeneratePlanRequest represents a weekly plan generation request. The
// flat *_target fields are the mobile app's wire shape.
type GeneratePlanRequest struct {
	UserID         string   `json:"user_id" validate:"required"`
	CaloriesTarget float64  `json:"calories_target" validate:"gte=0"`
	ProteinTarget  float64  `json:"protein_target" validate:"gte=0"`
	FatTarget      float64  `json:"fat_target" validate:"gte=0"`
	CarbsTarget    float64  `json:"carbs_target" validate:"gte=0"`
	Preferences    []string `json:"preferences,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	UseAI          *bool    `json:"use_ai,omitempty"`
}

func (r GeneratePlanRequest) target() meal.Target {
	return meal.Target{
		Calories: r.CaloriesTarget,
		Protein:  r.ProteinTarget,
		Fat:      r.FatTarget,
		Carbs:    r.CarbsTarget,
	}
}

// ReplaceMealRequest represents a single-slot replacement request.
type ReplaceMealRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	DayOfWeek      string  `json:"day_of_week" validate:"required"`
	MealType       string  `json:"meal_type" validate:"required"`
	CaloriesTarget float64 `json:"calories_target" validate:"gte=0"`
	ProteinTarget  float64 `json:"protein_target" validate:"gte=0"`
	FatTarget      float64 `json:"fat_target" validate:"gte=0"`
	CarbsTarget    float64 `json:"carbs_target" validate:"gte=0"`
	UseAI          *bool   `json:"use_ai,omitempty"`
}

func (r ReplaceMealRequest) target() meal.Target {
	return meal.Target{
		Calories: r.CaloriesTarget,
		Protein:  r.ProteinTarget,
		Fat:      r.FatTarget,
		Carbs:    r.CarbsTarget,
	}
}

// GeneratePlanResponse is the generation response envelope.
type GeneratePlanResponse struct {
	Message  string          `json:"message"`
	MealPlan meal.WeeklyPlan `json:"meal_plan"`
}

// ReplaceMealResponse is the replacement response envelope.
type ReplaceMealResponse struct {
	Message string    `json:"message"`
	Meal    meal.Meal `json:"meal"`
}

// GetPlanResponse is the plan lookup response envelope.
type GetPlanResponse struct {
	MealPlan meal.WeeklyPlan `json:"meal_plan"`
}

// GeneratePlan handles POST /api/meal-plan/generate.
func (h *MealPlanHandlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	h.logger.Info("weekly plan generation request",
		zap.String("user_id", req.UserID),
		zap.Float64("daily_calories", req.CaloriesTarget),
		zap.Bool("use_ai", useAI),
	)

	plan, err := h.service.GenerateWeeklyPlan(r.Context(), req.target(), req.Preferences, req.Allergies, useAI)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	// Persistence is best effort: the plan already exists and belongs in
	// the response either way.
	if err := h.store.SavePlan(r.Context(), req.UserID, plan); err != nil {
		h.logger.Warn("failed to persist weekly plan",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	}

	h.writeJSON(w, http.StatusOK, GeneratePlanResponse{
		Message:  "Weekly meal plan generated",
		MealPlan: plan,
	})
}

// ReplaceMeal handles POST /api/meal-plan/replace-meal.
func (h *MealPlanHandlers) ReplaceMeal(w http.ResponseWriter, r *http.Request) {
	var req ReplaceMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	plan, err := h.store.GetPlan(r.Context(), req.UserID)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	updated, replacement, err := h.service.ReplaceMeal(r.Context(), plan, meal.Day(req.DayOfWeek), meal.MealType(req.MealType), req.target(), useAI)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	if err := h.store.SavePlan(r.Context(), req.UserID, updated); err != nil {
		h.logger.Warn("failed to persist updated plan",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	}

	h.writeJSON(w, http.StatusOK, ReplaceMealResponse{
		Message: "Meal replaced",
		Meal:    replacement,
	})
}

// GetPlan handles GET /api/meal-plan/{user_id}.
func (h *MealPlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		h.writeErrorJSON(w, http.StatusBadRequest, "user_id is required")
		return
	}

	plan, err := h.store.GetPlan(r.Context(), userID)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, GetPlanResponse{MealPlan: plan})
}

// writeAppError maps domain errors onto HTTP statuses. Anything that is
// not an AppError is an unexpected internal failure.
func (h *MealPlanHandlers) writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.writeErrorJSON(w, appErr.StatusCode(), appErr.Message)
		return
	}
	h.logger.Error("unexpected handler error", zap.Error(err))
	h.writeErrorJSON(w, http.StatusInternalServerError, "Internal server error")
}
