package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"
)

// memDB is an in-memory store shared by the fake repositories below. It keeps
// the same constraints as the SQL schema: one like per (post, user), replies
// on the parent's post, and SET NULL on deleted parents.
type memDB struct {
	mu       sync.Mutex
	seq      int
	base     time.Time
	users    map[string]models.User
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	order    map[string]int
	likes    map[[2]string]bool
}

func newMemDB(usernames ...string) *memDB {
	db := &memDB{
		base:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[string]models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		order:    make(map[string]int),
		likes:    make(map[[2]string]bool),
	}
	for _, name := range usernames {
		db.users[name] = models.User{UserID: name, Username: name}
	}
	return db
}

func (db *memDB) next() (int, time.Time) {
	db.seq++
	return db.seq, db.base.Add(time.Duration(db.seq) * time.Second)
}

type memPosts struct{ db *memDB }

func (r memPosts) Create(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	seq, now := r.db.next()
	if post.PostID == "" {
		post.PostID = fmt.Sprintf("p-%d", seq)
	}
	post.CreatedAt, post.UpdatedAt = now, now
	stored := *post
	r.db.posts[post.PostID] = &stored
	r.db.order[post.PostID] = seq
	return nil
}

func (r memPosts) hydrate(p *models.Post) models.Post {
	out := *p
	u := r.db.users[p.AuthorID]
	out.AuthorUsername = u.Username
	out.AuthorProfilePicture = u.ProfilePicture
	return out
}

func (r memPosts) GetByID(_ context.Context, postID string) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, repository.ErrNotFound)
	}
	out := r.hydrate(p)
	return &out, nil
}

func (r memPosts) Exists(_ context.Context, postID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, ok := r.db.posts[postID]
	return ok, nil
}

func (r memPosts) filter(keep func(*models.Post) bool) []models.Post {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	posts := []models.Post{}
	for _, p := range r.db.posts {
		if keep(p) {
			posts = append(posts, r.hydrate(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return r.db.order[posts[i].PostID] > r.db.order[posts[j].PostID]
	})
	return posts
}

func (r memPosts) List(context.Context) ([]models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r memPosts) ListByUsername(_ context.Context, username string) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool { return r.db.users[p.AuthorID].Username == username }), nil
}

func (r memPosts) ListByAuthorIDs(_ context.Context, authorIDs []string) ([]models.Post, error) {
	ids := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		ids[id] = true
	}
	return r.filter(func(p *models.Post) bool { return ids[p.AuthorID] }), nil
}

func (r memPosts) Stats(_ context.Context, postIDs []string, requesterID string) (map[string]models.PostStats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stats := make(map[string]models.PostStats, len(postIDs))
	for _, id := range postIDs {
		var st models.PostStats
		for key := range r.db.likes {
			if key[0] == id {
				st.LikesCount++
				if key[1] == requesterID {
					st.IsLiked = true
				}
			}
		}
		for _, c := range r.db.comments {
			if c.PostID == id && c.ParentCommentID == nil {
				st.CommentsCount++
			}
		}
		stats[id] = st
	}
	return stats, nil
}

func (r memPosts) Update(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[post.PostID]
	if !ok || p.AuthorID != post.AuthorID {
		return fmt.Errorf("post %s: %w", post.PostID, repository.ErrNotFound)
	}
	p.Content = post.Content
	p.ImageKey = post.ImageKey
	return nil
}

func (r memPosts) Delete(_ context.Context, postID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[postID]; !ok {
		return fmt.Errorf("post %s: %w", postID, repository.ErrNotFound)
	}
	delete(r.db.posts, postID)
	for id, c := range r.db.comments {
		if c.PostID == postID {
			delete(r.db.comments, id)
		}
	}
	for key := range r.db.likes {
		if key[0] == postID {
			delete(r.db.likes, key)
		}
	}
	return nil
}

type memComments struct{ db *memDB }

func (r memComments) Create(_ context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if comment.ParentCommentID != nil {
		parent, ok := r.db.comments[*comment.ParentCommentID]
		if !ok || parent.PostID != comment.PostID {
			return repository.ErrParentMismatch
		}
	}

	seq, now := r.db.next()
	if comment.CommentID == "" {
		comment.CommentID = fmt.Sprintf("c-%d", seq)
	}
	comment.CreatedAt, comment.UpdatedAt = now, now
	stored := *comment
	r.db.comments[comment.CommentID] = &stored
	r.db.order[comment.CommentID] = seq
	return nil
}

func (r memComments) hydrate(c *models.Comment) models.Comment {
	out := *c
	u := r.db.users[c.AuthorID]
	out.AuthorUsername = u.Username
	out.AuthorProfilePicture = u.ProfilePicture
	return out
}

func (r memComments) GetByID(_ context.Context, commentID string) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[commentID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", commentID, repository.ErrNotFound)
	}
	out := r.hydrate(c)
	return &out, nil
}

func (r memComments) ListByPost(_ context.Context, postID string, order string) ([]models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	comments := []models.Comment{}
	for _, c := range r.db.comments {
		if c.PostID == postID {
			comments = append(comments, r.hydrate(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		a, b := r.db.order[comments[i].CommentID], r.db.order[comments[j].CommentID]
		if order == "desc" {
			return a > b
		}
		return a < b
	})
	return comments, nil
}

func (r memComments) Update(_ context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[comment.CommentID]
	if !ok || c.AuthorID != comment.AuthorID {
		return fmt.Errorf("comment %s: %w", comment.CommentID, repository.ErrNotFound)
	}
	c.Content = comment.Content
	return nil
}

func (r memComments) Delete(_ context.Context, commentID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[commentID]; !ok {
		return fmt.Errorf("comment %s: %w", commentID, repository.ErrNotFound)
	}
	delete(r.db.comments, commentID)
	for _, c := range r.db.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == commentID {
			c.ParentCommentID = nil
		}
	}
	return nil
}

type memLikes struct{ db *memDB }

func (r memLikes) Toggle(_ context.Context, postID, userID string) (bool, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[postID]; !ok {
		return false, 0, fmt.Errorf("post %s: %w", postID, repository.ErrNotFound)
	}

	key := [2]string{postID, userID}
	liked := !r.db.likes[key]
	if liked {
		r.db.likes[key] = true
	} else {
		delete(r.db.likes, key)
	}

	count := 0
	for k := range r.db.likes {
		if k[0] == postID {
			count++
		}
	}
	return liked, count, nil
}
