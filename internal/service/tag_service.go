package service

import (
	"context"
	"encoding/json"
	"nexuslearn_backend/internal/repository"
	"nexuslearn_backend/internal/util"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	popularTagsCacheKey = "forum:popular_tags"
	popularTagsCacheTTL = 5 * time.Minute
	popularTagsLimit    = 10
)

type TagService struct {
	QuestionRepo *repository.QuestionRepository
	Redis        *redis.Client
}

func NewTagService(questionRepo *repository.QuestionRepository, rdb *redis.Client) *TagService {
	return &TagService{
		QuestionRepo: questionRepo,
		Redis:        rdb,
	}
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// PopularTags 统计全部问题的标签频次，按次数降序取前 10。
// 次数相同按标签名升序，保证输出稳定。结果短缓存于 Redis。
func (s *TagService) PopularTags() ([]TagCount, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, popularTagsCacheKey).Result(); err == nil {
			var tags []TagCount
			if json.Unmarshal([]byte(cached), &tags) == nil {
				return tags, nil
			}
		}
	}

	joined, err := s.QuestionRepo.SelectTags()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range joined {
		for _, tag := range util.SplitTags(row) {
			counts[tag]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	if len(tags) > popularTagsLimit {
		tags = tags[:popularTagsLimit]
	}

	if s.Redis != nil {
		if data, err := json.Marshal(tags); err == nil {
			s.Redis.Set(ctx, popularTagsCacheKey, data, popularTagsCacheTTL)
		}
	}

	return tags, nil
}
