package engine

import "github.com/openbloc/chainfeed/internal/models"

// renderLocked builds the optimistic view: a copy of the confirmed layer
// with the unresolved pending deltas applied on top, in submission order.
// Caller holds e.mu.
func (e *Engine) renderLocked() []models.PostView {
	views := make([]models.PostView, len(e.confirmed))
	for i := range e.confirmed {
		views[i] = cloneView(e.confirmed[i])
	}

	for _, mut := range e.pending {
		switch mut.kind {
		case MutationCreatePost:
			views = append(views, models.PostView{
				Post: models.Post{
					ID:        mut.placeholder,
					Author:    mut.actor,
					Content:   mut.content,
					CreatedAt: mut.createdAt,
				},
			})
		case MutationAddComment:
			for i := range views {
				if views[i].ID != mut.postID {
					continue
				}
				views[i].CommentIDs = append(views[i].CommentIDs, mut.placeholder)
				views[i].Comments = append(views[i].Comments, models.Comment{
					ID:        mut.placeholder,
					PostID:    mut.postID,
					Author:    mut.actor,
					Content:   mut.content,
					CreatedAt: mut.createdAt,
				})
			}
		case MutationToggleLike:
			for i := range views {
				if views[i].ID != mut.postID {
					continue
				}
				if views[i].IsLiked {
					views[i].IsLiked = false
					views[i].LikeCount--
				} else {
					views[i].IsLiked = true
					views[i].LikeCount++
				}
			}
		}
	}

	sortViews(views)
	return views
}

func cloneView(v models.PostView) models.PostView {
	out := v
	out.CommentIDs = append([]uint64(nil), v.CommentIDs...)
	out.Comments = append([]models.Comment(nil), v.Comments...)
	return out
}
