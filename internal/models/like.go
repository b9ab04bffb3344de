package models

// LikeRecord represents the like state of one actor for one post. There is
// at most one record per (post, actor) pair; toggling flips Liked rather
// than stacking additional records.
type LikeRecord struct {
	PostID uint64 `json:"post_id"`
	Actor  string `json:"actor"`
	Liked  bool   `json:"liked"`
}

// LikeState is the authoritative result of a like toggle: the actor's new
// flag and the post's like count as recorded by the same atomic mutation.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likes_count"`
}
