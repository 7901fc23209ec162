package marketplace

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

// matchDetail finds the tier a submitted entry targets: by id within the
// offer first, then by offer type. It returns -1 when nothing matches.
func matchDetail(details []models.OfferDetail, in *OfferDetailInput) int {
	if in.ID != nil {
		for i := range details {
			if details[i].ID != 0 && details[i].ID == *in.ID {
				return i
			}
		}
	}
	for i := range details {
		if string(details[i].OfferType) == *in.OfferType {
			return i
		}
	}
	return -1
}

// mergeDetails applies the submitted tiers onto the loaded offer in memory.
// Nothing is persisted when it reports an error.
func mergeDetails(o *models.Offer, inputs []OfferDetailInput) *apperr.ValidationError {
	verr := apperr.NewValidation()
	for i := range inputs {
		in := &inputs[i]
		if dverr := in.validate(false); dverr.Err() != nil {
			verr.Nest(detailKey(i), dverr)
			continue
		}

		if idx := matchDetail(o.Details, in); idx >= 0 {
			in.apply(&o.Details[idx])
			continue
		}
		if len(o.Details) >= models.MaxOfferDetails {
			verr.Add("details", "An offer can have at most 3 details (basic, standard, premium).")
			continue
		}
		if dverr := in.validate(true); dverr.Err() != nil {
			verr.Nest(detailKey(i), dverr)
			continue
		}
		d := models.OfferDetail{OfferID: o.ID, BusinessUserID: o.UserID, Features: []string{}}
		in.apply(&d)
		o.Details = append(o.Details, d)
	}
	if len(verr.Fields) == 0 && duplicateTypes(o.Details) {
		verr.Add("details", "Each offer type may appear only once.")
	}
	return verr
}

// PATCH /api/offers/:id/
func (h *Handler) UpdateOffer(c echo.Context) error {
	o, err := h.ownedOffer(c)
	if err != nil {
		return err
	}

	in := new(OfferInput)
	if err := validation.Bind(c, in); err != nil {
		return err
	}

	verr := apperr.NewValidation()
	in.validateOffer(verr, false)
	if err := verr.Err(); err != nil {
		return err
	}
	in.applyOffer(o)
	if err := mergeDetails(o, in.Details).Err(); err != nil {
		return err
	}

	if err := h.Offers.Save(c.Request().Context(), o); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperr.NotFound(msgOfferNotFound)
		case errors.Is(err, repository.ErrInvalidInput):
			return apperr.Invalid("details", "Detail does not belong to this offer.")
		}
		return err
	}
	return c.JSON(http.StatusOK, toWriteResponse(o))
}
