package tag

import (
	"context"

	"foodgram/domain"
	"foodgram/entities"
)

type (
	TagService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTagDetail(ctx context.Context, id string) (domain.TagResponse, error)
	}

	tagService struct {
		tagRepository TagRepository
	}
)

func NewTagService(tagRepository TagRepository) TagService {
	return &tagService{tagRepository: tagRepository}
}

func (s *tagService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.tagRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]domain.TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, toTagResponse(t))
	}
	return res, nil
}

func (s *tagService) GetTagDetail(ctx context.Context, id string) (domain.TagResponse, error) {
	tag, err := s.tagRepository.GetTagByID(ctx, id)
	if err != nil {
		return domain.TagResponse{}, err
	}
	return toTagResponse(*tag), nil
}

func toTagResponse(t entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:   t.ID.String(),
		Name: t.Name,
		Slug: t.Slug,
	}
}
