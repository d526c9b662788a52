package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"fairchat/domain"
)

type createFlagRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	JobListingID string `json:"job_listing_id" validate:"required"`
}

type wireFlag struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	JobListingID string `json:"job_listing_id"`
}

func (w wireFlag) toDomain() domain.Flag {
	return domain.Flag{ID: w.ID, UserID: w.UserID, JobListingID: w.JobListingID}
}

func (c *Client) CreateFlag(ctx context.Context, userID, jobListingID string) (domain.Flag, error) {
	var out wireFlag
	body := createFlagRequest{UserID: userID, JobListingID: jobListingID}
	if err := c.do(ctx, http.MethodPost, "/api/flags", body, &out); err != nil {
		return domain.Flag{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) DeleteFlag(ctx context.Context, flagID string) error {
	return c.do(ctx, http.MethodDelete, "/api/flags/"+url.PathEscape(flagID), nil, nil)
}

func (c *Client) ListFlags(ctx context.Context, jobListingID string) ([]domain.Flag, error) {
	var out []wireFlag
	path := fmt.Sprintf("/api/flags?job_listing_id=%s", url.QueryEscape(jobListingID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return lo.Map(out, func(w wireFlag, _ int) domain.Flag {
		return w.toDomain()
	}), nil
}
