package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

// ActiveAnnouncements fetches the publicly visible announcements (max 3).
func (c *Client) ActiveAnnouncements(ctx context.Context) ([]Announcement, error) {
	resp, err := c.http.Get(ctx, "/api/announcements/active", nil)
	if err != nil {
		return nil, err
	}
	var out announcementListResponse
	if err := decodeJSON(resp, "active announcements", &out); err != nil {
		return nil, err
	}
	return out.Announcements, nil
}

// AllAnnouncements lists every announcement, active or not. Admin only.
func (c *Client) AllAnnouncements(ctx context.Context, token string) ([]Announcement, error) {
	resp, err := c.http.Get(ctx, "/api/announcements/admin/all", bearer(token))
	if err != nil {
		return nil, err
	}
	var out announcementListResponse
	if err := decodeJSON(resp, "all announcements", &out); err != nil {
		return nil, err
	}
	return out.Announcements, nil
}

// CreateAnnouncementParams carries the multipart fields for a new
// announcement. Image is required.
type CreateAnnouncementParams struct {
	Title        string
	LinkURL      string
	DisplayOrder int
	Image        retryhttp.File
}

type createAnnouncementResponse struct {
	Success      bool          `json:"success"`
	Announcement *Announcement `json:"announcement"`
}

// CreateAnnouncement uploads a new announcement banner.
func (c *Client) CreateAnnouncement(ctx context.Context, token string, p CreateAnnouncementParams) (*Announcement, error) {
	fields := map[string]string{
		"display_order": strconv.Itoa(p.DisplayOrder),
	}
	if p.Title != "" {
		fields["title"] = p.Title
	}
	if p.LinkURL != "" {
		fields["link_url"] = p.LinkURL
	}
	p.Image.Field = "image"
	resp, err := c.http.PostMultipart(ctx, "/api/announcements/admin/create", fields, []retryhttp.File{p.Image}, bearer(token))
	if err != nil {
		return nil, err
	}
	var out createAnnouncementResponse
	if err := decodeJSON(resp, "create announcement", &out); err != nil {
		return nil, err
	}
	return out.Announcement, nil
}

// UpdateAnnouncementParams carries the fields to change; nil pointers are
// left untouched server-side.
type UpdateAnnouncementParams struct {
	Title        *string
	LinkURL      *string
	DisplayOrder *int
	IsActive     *bool
	Image        *retryhttp.File
}

// UpdateAnnouncement changes fields and/or replaces the image.
func (c *Client) UpdateAnnouncement(ctx context.Context, token string, id int, p UpdateAnnouncementParams) error {
	fields := map[string]string{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.LinkURL != nil {
		fields["link_url"] = *p.LinkURL
	}
	if p.DisplayOrder != nil {
		fields["display_order"] = strconv.Itoa(*p.DisplayOrder)
	}
	if p.IsActive != nil {
		fields["is_active"] = strconv.FormatBool(*p.IsActive)
	}
	var files []retryhttp.File
	if p.Image != nil {
		img := *p.Image
		img.Field = "image"
		files = append(files, img)
	}
	resp, err := c.http.PutMultipart(ctx, fmt.Sprintf("/api/announcements/admin/%d", id), fields, files, bearer(token))
	if err != nil {
		return err
	}
	return decodeJSON(resp, "update announcement", nil)
}

// DeleteAnnouncement removes one announcement and its image.
func (c *Client) DeleteAnnouncement(ctx context.Context, token string, id int) error {
	resp, err := c.http.Do(ctx, &retryhttp.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/announcements/admin/%d", id),
		Header: bearer(token),
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, "delete announcement", nil)
}
