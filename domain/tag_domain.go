package domain

import (
	"errors"
)

var (
	MessageSuccessGetTags = "success get tags"
	MessageFailedGetTags  = "failed to get tags"

	ErrTagNotFound = errors.New("tag not found")
)

type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
