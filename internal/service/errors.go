package service

import "errors"

var (
	ErrForbidden  = errors.New("forbidden")
	ErrSelfFollow = errors.New("users cannot follow themselves")
	// ErrEmptyPost is returned when a post has neither content nor an image.
	ErrEmptyPost = errors.New("post must have content or an image")
)
