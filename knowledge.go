package pylon

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// MaxSlugLength caps generated article slugs.
const MaxSlugLength = 255

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// KnowledgeBase is a collection of help-center articles.
type KnowledgeBase struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// Article is one knowledge-base article.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug,omitempty"`
	Content         string    `json:"content,omitempty"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Status          string    `json:"status,omitempty"`
	AuthorID        string    `json:"author_id,omitempty"`
	ViewCount       int       `json:"view_count"`
	CreatedAt       Timestamp `json:"created_at"`
	UpdatedAt       Timestamp `json:"updated_at"`
}

// KnowledgeBasesService handles the /knowledge-bases resource.
type KnowledgeBasesService service

type knowledgeBaseListParams struct {
	Limit  int    `url:"limit"`
	Cursor string `url:"cursor,omitempty"`
}

// List streams all knowledge bases.
func (s *KnowledgeBasesService) List(ctx context.Context) *pylonhttp.PageIterator[*KnowledgeBase] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*KnowledgeBase, string, bool, error) {
		path, err := addOptions("/knowledge-bases", knowledgeBaseListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var kbs []*KnowledgeBase
		resp, err := s.client.http.Get(ctx, path, &kbs)
		if err != nil {
			return nil, "", false, err
		}
		return kbs, resp.Cursor, resp.HasNextPage, nil
	})
}

// Get fetches one knowledge base.
func (s *KnowledgeBasesService) Get(ctx context.Context, id string) (*KnowledgeBase, error) {
	if id == "" {
		return nil, ErrKnowledgeBaseIDRequired
	}

	var kb KnowledgeBase
	if _, err := s.client.http.Get(ctx, "/knowledge-bases/"+url.PathEscape(id), &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// ListArticles streams the articles in a knowledge base.
func (s *KnowledgeBasesService) ListArticles(ctx context.Context, kbID string) *pylonhttp.PageIterator[*Article] {
	return pylonhttp.NewPageIterator(func(ctx context.Context, cursor string) ([]*Article, string, bool, error) {
		if kbID == "" {
			return nil, "", false, ErrKnowledgeBaseIDRequired
		}

		path, err := addOptions("/knowledge-bases/"+url.PathEscape(kbID)+"/articles",
			knowledgeBaseListParams{Limit: DefaultPageLimit, Cursor: cursor})
		if err != nil {
			return nil, "", false, err
		}

		var articles []*Article
		resp, err := s.client.http.Get(ctx, path, &articles)
		if err != nil {
			return nil, "", false, err
		}
		return articles, resp.Cursor, resp.HasNextPage, nil
	})
}

// GetArticle fetches one article.
func (s *KnowledgeBasesService) GetArticle(ctx context.Context, kbID, articleID string) (*Article, error) {
	if kbID == "" {
		return nil, ErrKnowledgeBaseIDRequired
	}
	if articleID == "" {
		return nil, ErrArticleIDRequired
	}

	var article Article
	path := "/knowledge-bases/" + url.PathEscape(kbID) + "/articles/" + url.PathEscape(articleID)
	if _, err := s.client.http.Get(ctx, path, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// CreateArticleRequest is the payload for CreateArticle.
type CreateArticleRequest struct {
	Title string `json:"title"`

	// Content is the article body.
	Content string `json:"content"`

	// Slug is the URL name for the article. Derived from Title via
	// Slugify when empty.
	Slug string `json:"slug,omitempty"`

	// Status is draft or published. The API defaults new articles to
	// draft.
	Status string `json:"status,omitempty"`
}

// CreateArticle adds an article to a knowledge base.
func (s *KnowledgeBasesService) CreateArticle(ctx context.Context, kbID string, req *CreateArticleRequest) (*Article, error) {
	if kbID == "" {
		return nil, ErrKnowledgeBaseIDRequired
	}

	if req != nil && req.Slug == "" {
		r := *req
		r.Slug = Slugify(r.Title)
		req = &r
	}

	var article Article
	path := "/knowledge-bases/" + url.PathEscape(kbID) + "/articles"
	if _, err := s.client.http.Post(ctx, path, req, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// slugFold strips diacritics so titles like "Résumé" slug to "Resume".
var slugFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	slugStrip     = regexp.MustCompile(`[^\w\s-]`)
	slugSeparator = regexp.MustCompile(`[\s_]+`)
)

// Slugify derives a URL-friendly article name from a title: diacritics
// folded to ASCII, punctuation removed, whitespace runs collapsed to
// hyphens, capped at MaxSlugLength.
func Slugify(title string) string {
	folded, _, err := transform.String(slugFold, title)
	if err != nil {
		folded = title
	}

	slug := slugStrip.ReplaceAllString(folded, "")
	slug = slugSeparator.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}
