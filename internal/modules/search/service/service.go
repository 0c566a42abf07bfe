package search

import (
	"encoding/json"
	"log"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const (
	postsIndex = "posts"
	usersIndex = "users"
)

type meiliPostDoc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type meiliUserDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SearchService mirrors writes into Meilisearch and answers queries from it.
// Every method tolerates a nil client so the app (and the tests) run without
// a search backend.
type SearchService interface {
	IndexPost(post *entity.Post) error
	DeletePost(id uuid.UUID) error
	IndexUser(user *entity.User) error
	DeleteUser(id uuid.UUID) error
	SearchPosts(query string, limit int64) ([]uuid.UUID, error)
	SearchUsers(query string, limit int64) ([]uuid.UUID, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) initIndexes() {
	postSortable := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&postSortable); err != nil {
		log.Printf("Failed to update posts sortable attributes: %v", err)
	}

	userSearchable := []string{"username", "first_name", "last_name"}
	if _, err := s.client.Index(usersIndex).UpdateSearchableAttributes(&userSearchable); err != nil {
		log.Printf("Failed to update users searchable attributes: %v", err)
	}
}

func (s *searchService) IndexPost(post *entity.Post) error {
	if s.client == nil {
		return nil
	}

	content := ""
	if post.Content != nil {
		content = s.sanitizer.Sanitize(*post.Content)
	}

	doc := meiliPostDoc{
		ID:        post.ID.String(),
		UserID:    post.UserID.String(),
		Content:   content,
		CreatedAt: post.CreatedAt.Unix(),
	}

	_, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeletePost(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(postsIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) IndexUser(user *entity.User) error {
	if s.client == nil {
		return nil
	}

	doc := meiliUserDoc{
		ID:       user.ID.String(),
		Username: user.Username,
	}
	if user.Profile != nil {
		doc.FirstName = user.Profile.FirstName
		doc.LastName = user.Profile.LastName
	}

	_, err := s.client.Index(usersIndex).AddDocuments([]meiliUserDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeleteUser(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(usersIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) SearchPosts(query string, limit int64) ([]uuid.UUID, error) {
	return s.search(postsIndex, query, limit)
}

func (s *searchService) SearchUsers(query string, limit int64) ([]uuid.UUID, error) {
	return s.search(usersIndex, query, limit)
}

func (s *searchService) search(index, query string, limit int64) ([]uuid.UUID, error) {
	if s.client == nil {
		return nil, nil
	}

	raw, err := s.client.Index(index).SearchRaw(query, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &parsed); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		if id, err := uuid.Parse(hit.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
