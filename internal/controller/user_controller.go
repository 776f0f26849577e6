package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"news-chatter-be/internal/dto"
	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/service"
)

type UserController struct {
	users    service.IUserService
	validate *validator.Validate
}

func NewUserController(users service.IUserService) *UserController {
	return &UserController{
		users:    users,
		validate: validator.New(),
	}
}

func userIdFrom(c *fiber.Ctx) (string, error) {
	userId, ok := c.Locals("user_id").(string)
	if !ok || userId == "" {
		return "", fiber.ErrUnauthorized
	}
	return userId, nil
}

// CreateUser records the authenticated identity locally. Registration itself
// happens at the external identity provider.
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	userId, err := userIdFrom(c)
	if err != nil {
		return err
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := ctrl.users.EnsureUser(c.Context(), userId, req.Email); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create user")
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (ctrl *UserController) GetPreferences(c *fiber.Ctx) error {
	userId, err := userIdFrom(c)
	if err != nil {
		return err
	}

	prefs, err := ctrl.users.GetPreferences(c.Context(), userId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load preferences")
	}

	return c.JSON(dto.PreferencesResponse{Preferences: prefs})
}

func (ctrl *UserController) UpdatePreferences(c *fiber.Ctx) error {
	userId, err := userIdFrom(c)
	if err != nil {
		return err
	}

	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctrl.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := ctrl.users.UpdatePreferences(c.Context(), userId, entity.Preferences(req.Preferences)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save preferences")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (ctrl *UserController) GetHistory(c *fiber.Ctx) error {
	userId, err := userIdFrom(c)
	if err != nil {
		return err
	}

	records, err := ctrl.users.History(c.Context(), userId, c.QueryInt("limit", 20))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	items := make([]dto.HistoryItemResponse, 0, len(records))
	for _, record := range records {
		sources := make([]dto.TurnSourceResponse, 0, len(record.Sources))
		for _, s := range record.Sources {
			sources = append(sources, dto.TurnSourceResponse{
				Title:       s.Title,
				SourceURL:   s.SourceURL,
				Similarity:  s.Similarity,
				PublishedAt: s.PublishedAt,
			})
		}
		items = append(items, dto.HistoryItemResponse{
			Id:           record.Id.String(),
			QuestionText: record.QuestionText,
			PodcastText:  record.PodcastText,
			AudioURL:     record.AudioURL,
			Sources:      sources,
			CreatedAt:    record.CreatedAt,
		})
	}

	return c.JSON(dto.HistoryListResponse{Items: items})
}
