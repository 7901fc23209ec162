package marketplace

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/coderr/internal/models"
)

func (v *env) review(t *testing.T, key string, business int64, rating int) models.Review {
	t.Helper()
	rec := v.do(http.MethodPost, "/api/reviews/", key, fmt.Sprintf(`{"business_user":%d,"rating":%d,"description":"ok"}`, business, rating))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Review](t, rec)
}

func TestCreateReview(t *testing.T) {
	v := newEnv(t)

	r := v.review(t, "cust-key", 1, 4)
	assert.Equal(t, int64(1), r.BusinessUserID)
	assert.Equal(t, int64(2), r.ReviewerID)
	assert.Equal(t, 4, r.Rating)

	rec := v.do(http.MethodPost, "/api/reviews/", "cust-key", `{"business_user":1,"rating":5,"description":"again"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already reviewed")

	cases := []struct {
		name string
		body string
		key  string
	}{
		{"rating too high", `{"business_user":3,"rating":6,"description":"x"}`, "rating"},
		{"rating zero", `{"business_user":3,"rating":0,"description":"x"}`, "rating"},
		{"customer target", `{"business_user":4,"rating":3,"description":"x"}`, "business_user"},
		{"missing target", `{"business_user":99,"rating":3,"description":"x"}`, "business_user"},
		{"missing rating", `{"business_user":3,"description":"x"}`, "rating"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := v.do(http.MethodPost, "/api/reviews/", "cust-key", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decode[map[string][]string](t, rec), tc.key)
		})
	}

	rec = v.do(http.MethodPost, "/api/reviews/", "biz-key", `{"business_user":3,"rating":3,"description":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodPost, "/api/reviews/", "", `{}`).Code)
}

func TestListReviewsFiltersAndOrdering(t *testing.T) {
	v := newEnv(t)
	a := v.review(t, "cust-key", 1, 2)
	b := v.review(t, "cust2-key", 1, 5)
	c := v.review(t, "cust-key", 3, 4)

	all := decode[[]models.Review](t, v.do(http.MethodGet, "/api/reviews/", "biz-key", ""))
	require.Len(t, all, 3)
	assert.Equal(t, c.ID, all[0].ID)

	byBusiness := decode[[]models.Review](t, v.do(http.MethodGet, "/api/reviews/?business_user_id=1&ordering=rating", "biz-key", ""))
	require.Len(t, byBusiness, 2)
	assert.Equal(t, b.ID, byBusiness[0].ID)
	assert.Equal(t, a.ID, byBusiness[1].ID)

	byReviewer := decode[[]models.Review](t, v.do(http.MethodGet, "/api/reviews/?reviewer_id=2", "biz-key", ""))
	assert.Len(t, byReviewer, 2)

	empty := v.do(http.MethodGet, "/api/reviews/?business_user_id=77", "biz-key", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodGet, "/api/reviews/", "", "").Code)
}

func TestUpdateAndDeleteReview(t *testing.T) {
	v := newEnv(t)
	r := v.review(t, "cust-key", 1, 2)
	path := fmt.Sprintf("/api/reviews/%d/", r.ID)

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPatch, path, "cust2-key", `{"rating":5}`).Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodPatch, "/api/reviews/999/", "cust-key", `{"rating":5}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPatch, path, "cust-key", `{"rating":9}`).Code)

	rec := v.do(http.MethodPatch, path, "cust-key", `{"rating":5,"description":"better","business_user":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.Review](t, rec)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "better", got.Description)
	assert.Equal(t, int64(1), got.BusinessUserID)
	assert.False(t, got.UpdatedAt.Before(r.UpdatedAt))

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodDelete, path, "biz-key", "").Code)
	require.Equal(t, http.StatusNoContent, v.do(http.MethodDelete, path, "cust-key", "").Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodDelete, path, "cust-key", "").Code)

	// the pair is free again once the review is gone
	v.review(t, "cust-key", 1, 3)
}
