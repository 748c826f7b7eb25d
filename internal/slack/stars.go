package slack

import (
	"context"
	"net/url"
	"strconv"

	"github.com/slackfocus/slackfocus/internal/output"
)

// ListAllStars fetches every saved item, following the pagination cursor
// until the service reports no further pages. The list is built eagerly so
// callers can report accurate totals before processing.
//
// When the retry budget for a page is exhausted, the items collected from
// completed pages are returned together with the rate-limit error so the
// caller can still process them.
func (c *Client) ListAllStars(ctx context.Context, pageSize int) ([]SavedItem, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var items []SavedItem
	cursor := ""

	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp starsListResponse
		if err := c.Call(ctx, "stars.list", params, &resp); err != nil {
			// Completed pages are still useful, rate-limited or not.
			return items, err
		}

		items = append(items, resp.Items...)

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			return items, nil
		}
	}
}

// RemoveStar unstars a saved item. Messages are addressed by channel and
// timestamp, files by file ID; starred channels cannot be removed through
// this endpoint.
func (c *Client) RemoveStar(ctx context.Context, item SavedItem) error {
	params := url.Values{}

	switch item.Type {
	case TypeMessage:
		if item.Channel == "" || item.Message == nil || item.Message.Timestamp == "" {
			return output.ErrAPI(200, "saved message is missing channel or timestamp")
		}
		params.Set("channel", item.Channel)
		params.Set("timestamp", item.Message.Timestamp)
	case TypeFile:
		if item.File == nil || item.File.ID == "" {
			return output.ErrAPI(200, "saved file is missing its file ID")
		}
		params.Set("file", item.File.ID)
	default:
		return output.ErrAPI(200, "cannot remove saved item of type "+item.Type)
	}

	return c.Call(ctx, "stars.remove", params, nil)
}
