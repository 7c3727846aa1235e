package widget

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// Secondary features are thin wrappers over the backend contracts. On
// failure they return the error and leave local state untouched; no
// partial mutation is ever applied.

// LoadHistory replaces the transcript with the session's persisted
// history, preserving server order.
func (w *Widget) LoadHistory(ctx context.Context) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	var history model.ChatHistory
	if err := w.transport.Get(ctx, "/chat-history/session/"+url.PathEscape(id), &history); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	w.conv.ReplaceAll(history.Messages)
	return nil
}

// SaveHistory persists the current transcript under a display name.
func (w *Widget) SaveHistory(ctx context.Context, name string) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	history := model.ChatHistory{
		SessionID: id,
		Name:      name,
		Messages:  w.conv.Messages(),
	}
	if err := w.transport.Put(ctx, "/chat-history/session/"+url.PathEscape(id), history, nil); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// ClearHistory deletes the session's persisted transcript and resets
// the local one to the welcome message.
func (w *Widget) ClearHistory(ctx context.Context) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	if err := w.transport.Delete(ctx, "/chat-history/session/"+url.PathEscape(id)+"/clear", nil); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	w.conv.Clear()
	return nil
}

// ToggleBookmark bookmarks or un-bookmarks a transcript entry and
// returns the new state.
func (w *Widget) ToggleBookmark(ctx context.Context, messageIndex int) (bool, error) {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return false, err
	}

	msgs := w.conv.Messages()
	if messageIndex < 0 || messageIndex >= len(msgs) {
		return false, fmt.Errorf("message index %d out of range", messageIndex)
	}

	key := fmt.Sprintf("bookmark:%s:%d", id, messageIndex)
	bookmark := model.Bookmark{
		SessionID:    id,
		MessageIndex: messageIndex,
		Timestamp:    msgs[messageIndex].Timestamp,
		Content:      msgs[messageIndex].Content,
	}

	_, bookmarked, err := w.state.Get(w.identity.Namespace, key)
	if err != nil {
		return false, err
	}

	if bookmarked {
		if err := w.transport.Delete(ctx, "/bookmark", bookmark); err != nil {
			return true, fmt.Errorf("remove bookmark: %w", err)
		}
		if err := w.state.Delete(w.identity.Namespace, key); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := w.transport.Post(ctx, "/bookmark", bookmark, nil); err != nil {
		return false, fmt.Errorf("add bookmark: %w", err)
	}
	if err := w.state.Set(w.identity.Namespace, key, "1"); err != nil {
		return true, err
	}
	return true, nil
}

// RateMessage records up/down feedback for a transcript entry with an
// optional free-text reason, caching the vote locally.
func (w *Widget) RateMessage(ctx context.Context, messageIndex int, value model.RatingValue, reason string) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	rating := model.Rating{
		SessionID:    id,
		MessageIndex: messageIndex,
		Value:        value,
		Reason:       reason,
	}
	if err := w.transport.Post(ctx, "/rate", rating, nil); err != nil {
		return fmt.Errorf("rate message: %w", err)
	}
	return w.state.Set(w.identity.Namespace, fmt.Sprintf("rating:%s:%d", id, messageIndex), string(value))
}

// CachedRating returns the locally cached vote for a transcript entry.
func (w *Widget) CachedRating(messageIndex int) (model.RatingValue, bool) {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return "", false
	}
	v, ok, err := w.state.Get(w.identity.Namespace, fmt.Sprintf("rating:%s:%d", id, messageIndex))
	if err != nil || !ok {
		return "", false
	}
	return model.RatingValue(v), true
}

// Ratings lists the backend's ratings for the current session.
func (w *Widget) Ratings(ctx context.Context) ([]model.Rating, error) {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return nil, err
	}
	var out []model.Rating
	if err := w.transport.Get(ctx, "/ratings/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return out, nil
}

// AllRatings is the administrative aggregate view.
func (w *Widget) AllRatings(ctx context.Context) ([]model.Rating, error) {
	var out []model.Rating
	if err := w.transport.Get(ctx, "/ratings-all", &out); err != nil {
		return nil, fmt.Errorf("list all ratings: %w", err)
	}
	return out, nil
}

// DeleteRating removes a rating by id (administrative).
func (w *Widget) DeleteRating(ctx context.Context, ratingID string) error {
	if err := w.transport.Delete(ctx, "/rating/"+url.PathEscape(ratingID), nil); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

// ReportMessage files a user-initiated content report for a transcript
// entry.
func (w *Widget) ReportMessage(ctx context.Context, messageIndex int, reason string) error {
	id, err := w.sessions.GetOrCreate()
	if err != nil {
		return err
	}

	msgs := w.conv.Messages()
	if messageIndex < 0 || messageIndex >= len(msgs) {
		return fmt.Errorf("message index %d out of range", messageIndex)
	}

	report := model.Report{
		SessionID: id,
		Content:   msgs[messageIndex].Content,
		Reason:    reason,
		Status:    model.ReportPending,
	}
	if err := w.transport.Post(ctx, "/report-message/create", report, nil); err != nil {
		return fmt.Errorf("report message: %w", err)
	}
	return nil
}

// Reports lists content reports for administrative triage.
func (w *Widget) Reports(ctx context.Context) ([]model.Report, error) {
	var out []model.Report
	if err := w.transport.Get(ctx, "/report-message/getreports", &out); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// UpdateReport moves a report through the triage lifecycle
// (pending to resolved or dismissed) with optional admin notes.
func (w *Widget) UpdateReport(ctx context.Context, reportID string, status model.ReportStatus, notes string) error {
	body := model.Report{Status: status, AdminNotes: notes}
	if err := w.transport.Put(ctx, "/report-message/update/"+url.PathEscape(reportID), body, nil); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// DeleteReport removes a report (administrative).
func (w *Widget) DeleteReport(ctx context.Context, reportID string) error {
	if err := w.transport.Delete(ctx, "/report-message/delete/"+url.PathEscape(reportID), nil); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// UploadFile uploads a file and returns its hosted URL for later
// reference from a chat message.
func (w *Widget) UploadFile(ctx context.Context, kind model.UploadKind, filename string, r io.Reader) (*model.UploadResult, error) {
	return w.transport.Upload(ctx, kind, filename, r)
}

// SearchProperties queries the property index for @mention
// autocompletion.
func (w *Widget) SearchProperties(ctx context.Context, query string) ([]model.PropertyRef, error) {
	return w.resolver.Search(ctx, query)
}
