package marketplace

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	msgOfferNotFound  = "Offer not found."
	msgDetailNotFound = "Offer detail not found."
)

// offerFilter reads the listing query. Values that do not parse are ignored.
func offerFilter(q url.Values) repository.OfferFilter {
	var f repository.OfferFilter
	if v, err := strconv.ParseInt(q.Get("creator_id"), 10, 64); err == nil {
		f.CreatorID = &v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(q.Get("min_price"))); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("max_delivery_time")); err == nil {
		f.MaxDeliveryTime = &v
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Ordering = repository.OfferOrdering(q.Get("ordering"))
	return f
}

func pageParams(q url.Values) (page, size int, err error) {
	size = defaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		if v, convErr := strconv.Atoi(raw); convErr == nil && v > 0 {
			size = min(v, maxPageSize)
		}
	}
	page = 1
	if raw := q.Get("page"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil || v < 1 {
			return 0, 0, apperr.NotFound("Invalid page.")
		}
		page = v
	}
	return page, size, nil
}

// pageLink rebuilds the request URL pointing at another page.
func pageLink(c echo.Context, page int) *string {
	u := *c.Request().URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := c.Scheme() + "://" + c.Request().Host + u.RequestURI()
	return &link
}

// GET /api/offers/
func (h *Handler) ListOffers(c echo.Context) error {
	q := c.QueryParams()
	page, size, err := pageParams(q)
	if err != nil {
		return err
	}
	f := offerFilter(q)
	f.Limit = size
	f.Offset = (page - 1) * size

	offers, total, err := h.Offers.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	if page > 1 && f.Offset >= total {
		return apperr.NotFound("Invalid page.")
	}

	out := Page{Count: total, Results: make([]OfferListItem, 0, len(offers))}
	for i := range offers {
		out.Results = append(out.Results, toListItem(&offers[i]))
	}
	if f.Offset+len(offers) < total {
		out.Next = pageLink(c, page+1)
	}
	if page > 1 {
		out.Previous = pageLink(c, page-1)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/offers/ (behind RequireType(MsgOfferBusinessOnly, models.Business))
func (h *Handler) CreateOffer(c echo.Context) error {
	u := middleware.CurrentUser(c)

	in := new(OfferInput)
	if err := validation.Bind(c, in); err != nil {
		return err
	}

	verr := apperr.NewValidation()
	in.validateOffer(verr, true)
	switch {
	case len(in.Details) == 0:
		verr.Add("details", "At least one offer detail is required.")
	case len(in.Details) > models.MaxOfferDetails:
		verr.Add("details", "An offer can have at most 3 details (basic, standard, premium).")
	}

	o := &models.Offer{UserID: u.ID}
	in.applyOffer(o)
	for i := range in.Details {
		if dverr := in.Details[i].validate(true); dverr.Err() != nil {
			verr.Nest(detailKey(i), dverr)
			continue
		}
		d := models.OfferDetail{Features: []string{}}
		in.Details[i].apply(&d)
		o.Details = append(o.Details, d)
	}
	if verr.Err() == nil && duplicateTypes(o.Details) {
		verr.Add("details", "Each offer type may appear only once.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	if err := h.Offers.Create(c.Request().Context(), o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toWriteResponse(o))
}

// GET /api/offers/:id/
func (h *Handler) GetOffer(c echo.Context) error {
	id, err := pathID(c.Param("id"), msgOfferNotFound)
	if err != nil {
		return err
	}
	o, err := h.Offers.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgOfferNotFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOfferResponse(o))
}

// ownedOffer loads the offer and checks the caller owns it.
func (h *Handler) ownedOffer(c echo.Context) (*models.Offer, error) {
	id, err := pathID(c.Param("id"), msgOfferNotFound)
	if err != nil {
		return nil, err
	}
	o, err := h.Offers.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgOfferNotFound)
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != middleware.CurrentUser(c).ID {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return o, nil
}

// DELETE /api/offers/:id/
func (h *Handler) DeleteOffer(c echo.Context) error {
	o, err := h.ownedOffer(c)
	if err != nil {
		return err
	}
	if err := h.Offers.Delete(c.Request().Context(), o.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgOfferNotFound)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /api/offerdetails/:id/
func (h *Handler) GetOfferDetail(c echo.Context) error {
	id, err := pathID(c.Param("id"), msgDetailNotFound)
	if err != nil {
		return err
	}
	d, err := h.Offers.GetDetail(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgDetailNotFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(d))
}
