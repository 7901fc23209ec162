package marketplace

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

const msgReviewNotFound = "Review not found."

// GET /api/reviews/
func (h *Handler) ListReviews(c echo.Context) error {
	var f repository.ReviewFilter
	if v, err := strconv.ParseInt(c.QueryParam("business_user_id"), 10, 64); err == nil {
		f.BusinessUserID = &v
	}
	if v, err := strconv.ParseInt(c.QueryParam("reviewer_id"), 10, 64); err == nil {
		f.ReviewerID = &v
	}
	f.Ordering = repository.ReviewOrdering(c.QueryParam("ordering"))

	reviews, err := h.Reviews.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return c.JSON(http.StatusOK, reviews)
}

// POST /api/reviews/
// CreateReview lets a customer rate a business user once.
func (h *Handler) CreateReview(c echo.Context) error {
	u := middleware.CurrentUser(c)

	req := new(CreateReviewRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}
	if !ratingInRange(*req.Rating) {
		return apperr.Invalid("rating", msgRatingRange)
	}

	ctx := c.Request().Context()
	target, err := h.Users.GetByID(ctx, *req.BusinessUser)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Invalid("business_user", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.BusinessUser))
	}
	if err != nil {
		return err
	}
	if target.Type != models.Business {
		return apperr.Invalid("business_user", "You can only review business users.")
	}
	if target.ID == u.ID {
		return apperr.Invalid(apperr.NonFieldErrors, "You cannot review yourself.")
	}

	msgDuplicate := "You have already reviewed this business user. You can only submit one review per business profile."
	exists, err := h.Reviews.Exists(ctx, target.ID, u.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Invalid(apperr.NonFieldErrors, msgDuplicate)
	}

	r := &models.Review{
		BusinessUserID: target.ID,
		ReviewerID:     u.ID,
		Rating:         *req.Rating,
		Description:    *req.Description,
	}
	if err := h.Reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Invalid(apperr.NonFieldErrors, msgDuplicate)
		}
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// ownReview loads the review and checks the caller wrote it.
func (h *Handler) ownReview(c echo.Context) (*models.Review, error) {
	id, err := pathID(c.Param("id"), msgReviewNotFound)
	if err != nil {
		return nil, err
	}
	r, err := h.Reviews.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return nil, err
	}
	if r.ReviewerID != middleware.CurrentUser(c).ID {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return r, nil
}

// PATCH /api/reviews/:id/
func (h *Handler) UpdateReview(c echo.Context) error {
	r, err := h.ownReview(c)
	if err != nil {
		return err
	}
	req := new(UpdateReviewRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}
	if req.Rating != nil {
		if !ratingInRange(*req.Rating) {
			return apperr.Invalid("rating", msgRatingRange)
		}
		r.Rating = *req.Rating
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if err := h.Reviews.Update(c.Request().Context(), r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgReviewNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// DELETE /api/reviews/:id/
func (h *Handler) DeleteReview(c echo.Context) error {
	r, err := h.ownReview(c)
	if err != nil {
		return err
	}
	if err := h.Reviews.Delete(c.Request().Context(), r.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgReviewNotFound)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
