package restapi

import (
	"context"
	"net/http"
	"net/url"

	"fairchat/domain"
)

type wireUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type wireSession struct {
	ID           string `json:"id"`
	JobListingID string `json:"job_listing_id"`
	CandidateID  string `json:"candidate_id"`
	CompanyID    string `json:"company_id"`
}

// CurrentUser resolves the identity and role behind the bound token.
func (c *Client) CurrentUser(ctx context.Context) (domain.Sender, error) {
	var out wireUser
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return domain.Sender{}, err
	}
	return domain.Sender{ID: out.ID, Role: domain.ParseRole(out.Role)}, nil
}

// Session fetches the metadata that scopes a chat view.
func (c *Client) Session(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	var out wireSession
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(string(id)), nil, &out); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:           domain.SessionID(out.ID),
		JobListingID: out.JobListingID,
		CandidateID:  out.CandidateID,
		CompanyID:    out.CompanyID,
	}, nil
}
