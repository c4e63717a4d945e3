package service

import (
	"context"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/storage"

	log "github.com/sirupsen/logrus"
)

// Serializer turns stored rows into response shapes. Every derived field is
// computed for the requester passed in; nothing is kept between calls.
type Serializer struct {
	postRepo repository.PostRepository
	storage  storage.Storage
}

func NewSerializer(postRepo repository.PostRepository, storage storage.Storage) *Serializer {
	return &Serializer{postRepo: postRepo, storage: storage}
}

// urlResolver resolves object keys to URLs, memoizing within one response.
type urlResolver struct {
	ctx     context.Context
	storage storage.Storage
	seen    map[string]*string
}

func (s *Serializer) resolver(ctx context.Context) *urlResolver {
	return &urlResolver{ctx: ctx, storage: s.storage, seen: make(map[string]*string)}
}

func (u *urlResolver) url(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}

	if resolved, ok := u.seen[*key]; ok {
		return resolved
	}

	var resolved *string
	if u.storage != nil {
		link, err := u.storage.GetImageURL(u.ctx, *key)
		if err != nil {
			log.Warnf("[serializer] failed to resolve url for %s: %v", *key, err)
		} else {
			resolved = &link
		}
	}

	u.seen[*key] = resolved
	return resolved
}

func (u *urlResolver) author(id, username string, picture *string) models.AuthorView {
	return models.AuthorView{
		ID:             id,
		Username:       username,
		ProfilePicture: u.url(picture),
	}
}

func (s *Serializer) Posts(ctx context.Context, requesterID string, posts []models.Post) ([]models.PostView, error) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostID)
	}

	stats, err := s.postRepo.Stats(ctx, ids, requesterID)
	if err != nil {
		return nil, err
	}

	urls := s.resolver(ctx)
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		st := stats[p.PostID]
		views = append(views, models.PostView{
			ID:            p.PostID,
			Author:        urls.author(p.AuthorID, p.AuthorUsername, p.AuthorProfilePicture),
			Content:       p.Content,
			Image:         urls.url(p.ImageKey),
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
			LikesCount:    st.LikesCount,
			CommentsCount: st.CommentsCount,
			IsLiked:       requesterID != "" && st.IsLiked,
		})
	}

	return views, nil
}

func (s *Serializer) Post(ctx context.Context, requesterID string, post *models.Post) (*models.PostView, error) {
	views, err := s.Posts(ctx, requesterID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Serializer) User(ctx context.Context, user *models.UserSummary) models.UserView {
	return models.UserView{
		ID:             user.UserID,
		Username:       user.Username,
		ProfilePicture: s.resolver(ctx).url(user.ProfilePicture),
		CreatedAt:      user.CreatedAt,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
		IsFollowing:    user.IsFollowing,
	}
}

func (s *Serializer) Users(ctx context.Context, users []models.UserSummary) []models.UserView {
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, s.User(ctx, &users[i]))
	}
	return views
}

// commentTree indexes a post's comments by parent so that reply trees can be
// assembled from a single flat query.
type commentTree struct {
	comments []models.Comment
	index    map[string]int
	children map[string][]int
}

func newCommentTree(comments []models.Comment) *commentTree {
	t := &commentTree{
		comments: comments,
		index:    make(map[string]int, len(comments)),
		children: make(map[string][]int),
	}

	for i, c := range comments {
		t.index[c.CommentID] = i
		if c.ParentCommentID != nil {
			t.children[*c.ParentCommentID] = append(t.children[*c.ParentCommentID], i)
		}
	}

	return t
}

// topLevel returns the indexes of comments without a parent, in listing order.
func (t *commentTree) topLevel() []int {
	roots := []int{}
	for i, c := range t.comments {
		if c.ParentCommentID == nil {
			roots = append(roots, i)
		}
	}
	return roots
}

type treeFrame struct {
	idx      int
	expanded bool
}

// build assembles the views for roots with an explicit stack. Children are
// finished before their parent (post-order), so each parent copies complete
// reply slices. Depth is unbounded.
func (t *commentTree) build(roots []int, urls *urlResolver) []models.CommentView {
	built := make(map[int]models.CommentView, len(t.comments))
	visited := make(map[int]bool, len(t.comments))

	stack := make([]treeFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, treeFrame{idx: roots[i]})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := &t.comments[top.idx]
		kids := t.children[c.CommentID]

		if !top.expanded {
			if visited[top.idx] {
				continue
			}
			visited[top.idx] = true

			stack = append(stack, treeFrame{idx: top.idx, expanded: true})
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, treeFrame{idx: kids[i]})
			}
			continue
		}

		view := models.CommentView{
			ID:            c.CommentID,
			Author:        urls.author(c.AuthorID, c.AuthorUsername, c.AuthorProfilePicture),
			Content:       c.Content,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
			ParentComment: c.ParentCommentID,
			Replies:       make([]models.CommentView, 0, len(kids)),
		}
		for _, k := range kids {
			if child, ok := built[k]; ok {
				view.Replies = append(view.Replies, child)
				delete(built, k)
			}
		}
		built[top.idx] = view
	}

	views := make([]models.CommentView, 0, len(roots))
	for _, r := range roots {
		if v, ok := built[r]; ok {
			views = append(views, v)
		}
	}

	return views
}

// CommentForest returns the top-level comments with their replies nested.
func (s *Serializer) CommentForest(ctx context.Context, comments []models.Comment) []models.CommentView {
	t := newCommentTree(comments)
	return t.build(t.topLevel(), s.resolver(ctx))
}

// CommentSubtree returns the comment rootID with its replies nested, or false
// if rootID is not among comments.
func (s *Serializer) CommentSubtree(ctx context.Context, comments []models.Comment, rootID string) (models.CommentView, bool) {
	t := newCommentTree(comments)

	idx, ok := t.index[rootID]
	if !ok {
		return models.CommentView{}, false
	}

	views := t.build([]int{idx}, s.resolver(ctx))
	if len(views) == 0 {
		return models.CommentView{}, false
	}
	return views[0], true
}
