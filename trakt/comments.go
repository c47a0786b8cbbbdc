package trakt

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// reviewLength is the comment length in characters beyond which the API
// treats a comment as a review.
const reviewLength = 200

// CommentMedia identifies what a comment is attached to. Exactly one
// field is set.
type CommentMedia struct {
	Movie   *Movie   `json:"movie,omitempty"`
	Show    *Show    `json:"show,omitempty"`
	Season  *Season  `json:"season,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// validate ensures exactly one record is set
func (m CommentMedia) validate() error {
	count := 0
	if m.Movie != nil {
		count++
	}
	if m.Show != nil {
		count++
	}
	if m.Season != nil {
		count++
	}
	if m.Episode != nil {
		count++
	}
	if count != 1 {
		return fmt.Errorf("exactly one of movie, show, season or episode is required")
	}
	return nil
}

// PostCommentOptions carries the comment flags
type PostCommentOptions struct {
	Spoiler bool
	Review  bool
}

// commentPayload is the comments endpoint's request body
type commentPayload struct {
	Comment string   `json:"comment"`
	Spoiler bool     `json:"spoiler"`
	Review  bool     `json:"review"`
	Movie   *Movie   `json:"movie,omitempty"`
	Show    *Show    `json:"show,omitempty"`
	Season  *Season  `json:"season,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// PostComment attaches a comment to a movie, show, season or episode.
// Comments longer than 200 characters are flagged as reviews
// automatically, matching the API's definition of a review.
func (c *Client) PostComment(ctx context.Context, media CommentMedia, text string, opts PostCommentOptions) (*Comment, error) {
	if err := media.validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	review := opts.Review
	if !review && utf8.RuneCountInString(text) > reviewLength {
		review = true
	}

	payload := commentPayload{
		Comment: text,
		Spoiler: opts.Spoiler,
		Review:  review,
		Movie:   media.Movie,
		Show:    media.Show,
		Season:  media.Season,
		Episode: media.Episode,
	}

	var result Comment
	if err := c.Post(ctx, "comments", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}
	return &result, nil
}

// replyPayload is the replies endpoint's request body
type replyPayload struct {
	Comment string `json:"comment"`
	Spoiler bool   `json:"spoiler"`
}

// PostReply adds a reply under an existing comment
func (c *Client) PostReply(ctx context.Context, commentID int, text string, spoiler bool) (*Comment, error) {
	if commentID <= 0 {
		return nil, fmt.Errorf("comment id is required")
	}
	if text == "" {
		return nil, fmt.Errorf("reply text is required")
	}

	payload := replyPayload{Comment: text, Spoiler: spoiler}

	var result Comment
	if err := c.Post(ctx, fmt.Sprintf("comments/%d/replies", commentID), payload, &result); err != nil {
		return nil, fmt.Errorf("failed to post reply: %w", err)
	}
	return &result, nil
}
