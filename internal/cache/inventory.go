package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	BlogKeyPrefix     = "blog:%d"
	BlogListKeyPrefix = "blogs:published:%s:%d:%d"
	BlogListScanGlob  = "blogs:published:*"
)

const (
	UserTTL = 5 * time.Minute
	BlogTTL = 10 * time.Minute
	ListTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BlogKey(blogID uint) string {
	return fmt.Sprintf(BlogKeyPrefix, blogID)
}

// BlogListKey keys one page of the published-only list (the list shared
// by every viewer). Per-viewer doctor lists are never cached.
func BlogListKey(category string, limit, offset int) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf(BlogListKeyPrefix, category, limit, offset)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateBlog(ctx context.Context, blogID uint) {
	Invalidate(ctx, BlogKey(blogID))
}

// InvalidateBlogLists drops every cached published-list page. Called on
// any blog write since a category change moves a post between lists.
func InvalidateBlogLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, BlogListScanGlob, 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
