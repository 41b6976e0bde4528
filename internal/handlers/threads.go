package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/repository"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/utils"
)

// ThreadHandler handles the forum tree: threads, their nested comments and
// the comments' nested replies. Deleting a thread or comment leaves its
// descendants in place (no cascade).
type ThreadHandler struct {
	Threads  *repository.DocumentRepository
	Comments *repository.DocumentRepository
	Replies  *repository.DocumentRepository
	Sink     *observe.Sink
}

// NewThreadHandler builds the handler over the forum tree.
func NewThreadHandler(s store.Store, sink *observe.Sink) *ThreadHandler {
	return &ThreadHandler{
		Threads:  repository.New(s, store.MustTemplate("threads")),
		Comments: repository.New(s, store.MustTemplate("threads", "*", "comments")),
		Replies:  repository.New(s, store.MustTemplate("threads", "*", "comments", "*", "replies")),
		Sink:     sink,
	}
}

// ListThreads handles GET /api/threads, newest first.
// @Summary List threads
// @Tags Forum
// @Produce json
// @Success 200 {array} models.Thread
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /threads [get]
func (h *ThreadHandler) ListThreads(c *fiber.Ctx) error {
	records, err := h.Threads.FindAll(context.Background(), &store.Order{Field: store.CreatedAtField, Desc: true})
	if err != nil {
		return storeErrorResponse(c, err, "No threads found", "listThreads")
	}

	threads := make([]models.Thread, 0, len(records))
	for _, rec := range records {
		t, err := models.FromRecord[models.Thread](rec)
		if err != nil {
			h.Sink.Report("decode threads", err)
			continue
		}
		threads = append(threads, t)
	}
	return c.Status(fiber.StatusOK).JSON(threads)
}

// GetThread handles GET /api/threads/:id
// @Summary Get one thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} models.Thread
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /threads/{id} [get]
func (h *ThreadHandler) GetThread(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := h.Threads.FindByID(context.Background(), id)
	if err != nil {
		return storeErrorResponse(c, err, "Thread '"+id+"' not found", "getThread")
	}

	t, err := models.FromRecord[models.Thread](rec)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getThread")
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

// CreateThread handles POST /api/threads
// @Summary Create a thread
// @Tags Forum
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /threads [post]
func (h *ThreadHandler) CreateThread(c *fiber.Ctx) error {
	var t models.Thread
	if err := c.BodyParser(&t); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if t.UserID == "" || t.Title == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	// Counters always start clean, whatever the client sent.
	t.Upvotes = 0
	t.Downvotes = 0
	t.Votes = nil

	rec, err := models.ToRecord(t)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createThread")
	}
	id, err := h.Threads.Add(context.Background(), rec)
	if err != nil {
		return storeErrorResponse(c, err, "", "createThread")
	}
	return utils.MutationSuccessResponse(c, id)
}

// UpdateThread handles PATCH /api/threads/:id (partial merge).
// @Summary Update a thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /threads/{id} [patch]
func (h *ThreadHandler) UpdateThread(c *fiber.Ctx) error {
	id := c.Params("id")

	partial := make(store.Record)
	if err := c.BodyParser(&partial); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if len(partial) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	if err := h.Threads.Update(context.Background(), id, partial); err != nil {
		return storeErrorResponse(c, err, "Thread '"+id+"' not found", "updateThread")
	}
	return utils.MutationSuccessResponse(c, id)
}

// DeleteThread handles DELETE /api/threads/:id
// @Summary Delete a thread
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /threads/{id} [delete]
func (h *ThreadHandler) DeleteThread(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.Threads.Delete(context.Background(), id); err != nil {
		return storeErrorResponse(c, err, "", "deleteThread")
	}
	return utils.MutationSuccessResponse(c, id)
}

// Vote handles POST /api/threads/:id/votes. At most one vote per user; a
// repeated identical vote is a no-op, switching sides moves the counters.
// The read-modify-write is last-write-wins: two simultaneous votes can lose
// an increment, matching the source behavior.
// @Summary Vote on a thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /threads/{id}/votes [post]
func (h *ThreadHandler) Vote(c *fiber.Ctx) error {
	id := c.Params("id")

	var body struct {
		UserID    string               `json:"userId"`
		Direction models.VoteDirection `json:"direction"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if body.UserID == "" || (body.Direction != models.VoteUp && body.Direction != models.VoteDown) {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	rec, err := h.Threads.FindByID(context.Background(), id)
	if err != nil {
		return storeErrorResponse(c, err, "Thread '"+id+"' not found", "vote")
	}
	t, err := models.FromRecord[models.Thread](rec)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "vote")
	}

	if t.ApplyVote(body.UserID, body.Direction) {
		partial := store.Record{
			"upvotes":   t.Upvotes,
			"downvotes": t.Downvotes,
			"votes":     t.Votes,
		}
		if err := h.Threads.Update(context.Background(), id, partial); err != nil {
			return storeErrorResponse(c, err, "Thread '"+id+"' not found", "vote")
		}
	}
	return utils.MutationSuccessResponse(c, id)
}

// ListComments handles GET /api/threads/:id/comments, oldest first.
// @Summary List a thread's comments
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {array} models.Comment
// @Router /threads/{id}/comments [get]
func (h *ThreadHandler) ListComments(c *fiber.Ctx) error {
	threadID := c.Params("id")

	records, err := h.Comments.FindAll(context.Background(), &store.Order{Field: store.CreatedAtField}, threadID)
	if err != nil {
		return storeErrorResponse(c, err, "No comments found", "listComments")
	}

	comments := make([]models.Comment, 0, len(records))
	for _, rec := range records {
		cm, err := models.FromRecord[models.Comment](rec)
		if err != nil {
			h.Sink.Report("decode comments", err)
			continue
		}
		comments = append(comments, cm)
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}

// CreateComment handles POST /api/threads/:id/comments
// @Summary Comment on a thread
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /threads/{id}/comments [post]
func (h *ThreadHandler) CreateComment(c *fiber.Ctx) error {
	threadID := c.Params("id")

	var cm models.Comment
	if err := c.BodyParser(&cm); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if cm.UserID == "" || cm.Text == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	rec, err := models.ToRecord(cm)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createComment")
	}
	id, err := h.Comments.Add(context.Background(), rec, threadID)
	if err != nil {
		return storeErrorResponse(c, err, "", "createComment")
	}
	return utils.MutationSuccessResponse(c, id)
}

// DeleteComment handles DELETE /api/threads/:id/comments/:commentId
// @Summary Delete a comment
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /threads/{id}/comments/{commentId} [delete]
func (h *ThreadHandler) DeleteComment(c *fiber.Ctx) error {
	threadID := c.Params("id")
	commentID := c.Params("commentId")

	if err := h.Comments.Delete(context.Background(), commentID, threadID); err != nil {
		return storeErrorResponse(c, err, "", "deleteComment")
	}
	return utils.MutationSuccessResponse(c, commentID)
}

// ListReplies handles GET /api/threads/:id/comments/:commentId/replies
// @Summary List a comment's replies
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {array} models.Reply
// @Router /threads/{id}/comments/{commentId}/replies [get]
func (h *ThreadHandler) ListReplies(c *fiber.Ctx) error {
	threadID := c.Params("id")
	commentID := c.Params("commentId")

	records, err := h.Replies.FindAll(context.Background(), &store.Order{Field: store.CreatedAtField}, threadID, commentID)
	if err != nil {
		return storeErrorResponse(c, err, "No replies found", "listReplies")
	}

	replies := make([]models.Reply, 0, len(records))
	for _, rec := range records {
		r, err := models.FromRecord[models.Reply](rec)
		if err != nil {
			h.Sink.Report("decode replies", err)
			continue
		}
		replies = append(replies, r)
	}
	return c.Status(fiber.StatusOK).JSON(replies)
}

// CreateReply handles POST /api/threads/:id/comments/:commentId/replies
// @Summary Reply to a comment
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /threads/{id}/comments/{commentId}/replies [post]
func (h *ThreadHandler) CreateReply(c *fiber.Ctx) error {
	threadID := c.Params("id")
	commentID := c.Params("commentId")

	var r models.Reply
	if err := c.BodyParser(&r); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if r.UserID == "" || r.Text == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	rec, err := models.ToRecord(r)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createReply")
	}
	id, err := h.Replies.Add(context.Background(), rec, threadID, commentID)
	if err != nil {
		return storeErrorResponse(c, err, "", "createReply")
	}
	return utils.MutationSuccessResponse(c, id)
}

// DeleteReply handles DELETE /api/threads/:id/comments/:commentId/replies/:replyId
// @Summary Delete a reply
// @Tags Forum
// @Produce json
// @Param id path string true "Thread ID"
// @Param commentId path string true "Comment ID"
// @Param replyId path string true "Reply ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /threads/{id}/comments/{commentId}/replies/{replyId} [delete]
func (h *ThreadHandler) DeleteReply(c *fiber.Ctx) error {
	threadID := c.Params("id")
	commentID := c.Params("commentId")
	replyID := c.Params("replyId")

	if err := h.Replies.Delete(context.Background(), replyID, threadID, commentID); err != nil {
		return storeErrorResponse(c, err, "", "deleteReply")
	}
	return utils.MutationSuccessResponse(c, replyID)
}
