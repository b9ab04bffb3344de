package models

// PostView is a post enriched with its hydrated comments and the viewer's
// own like flag. Views are owned by the sync engine; presentation code only
// ever reads them.
type PostView struct {
	Post
	Comments []Comment `json:"comments"`
	IsLiked  bool      `json:"is_liked"`
}
