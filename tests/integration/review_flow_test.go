package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// TestReviewFlow_CreateApprovePublish walks the whole review lifecycle against
// a running stack (APPROVAL_MIN_COUNT=2 in the compose setup): create a
// review, verify it is hidden from the public listing, approve it twice, and
// verify it becomes public.
func TestReviewFlow_CreateApprovePublish(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "author")
	approver1 := registerUser(t, "approver1")
	approver2 := registerUser(t, "approver2")
	posID := createPos(t, "Review Flow Cafe")

	// Create the review as the author.
	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Great espresso between lectures.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")
	if got := extractFloat(t, body, "data.approval_count"); got != 0 {
		t.Errorf("new review approval_count = %v, want 0", got)
	}
	if extractField(body, "data.approved") != false {
		t.Error("new review should not be approved")
	}

	// The pending review must not appear in the public (approved) listing.
	status, body = httpGet(t, fmt.Sprintf("%s/api/v1/pos/%s/reviews", baseURL(), posID))
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "total_count"); got != 0 {
		t.Errorf("approved listing total_count = %v, want 0", got)
	}

	// It appears in the moderation queue (approved=false).
	status, body = httpGet(t, fmt.Sprintf("%s/api/v1/pos/%s/reviews?approved=false", baseURL(), posID))
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "total_count"); got != 1 {
		t.Errorf("pending listing total_count = %v, want 1", got)
	}

	// First approval: still below the quorum.
	status, body = httpPostAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID), nil, approver1)
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "data.approval_count"); got != 1 {
		t.Errorf("approval_count after first approval = %v, want 1", got)
	}
	if extractField(body, "data.approved") != false {
		t.Error("review should not be approved after one approval")
	}

	// Second approval: quorum reached, review becomes public.
	status, body = httpPostAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID), nil, approver2)
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "data.approval_count"); got != 2 {
		t.Errorf("approval_count after second approval = %v, want 2", got)
	}
	if extractField(body, "data.approved") != true {
		t.Error("review should be approved after reaching the quorum")
	}

	status, body = httpGet(t, fmt.Sprintf("%s/api/v1/pos/%s/reviews", baseURL(), posID))
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "total_count"); got != 1 {
		t.Errorf("approved listing total_count after quorum = %v, want 1", got)
	}
}

// TestReviewFlow_ConcurrentApprovalsNoLostUpdate fires two approvals from
// different users at the same review in parallel. The row lock in the
// approval transaction must serialize them: both increments land, the count
// is exactly 2 and the quorum (APPROVAL_MIN_COUNT=2) flips approved.
func TestReviewFlow_ConcurrentApprovalsNoLostUpdate(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "conc-author")
	approvers := []string{
		registerUser(t, "conc-approver1"),
		registerUser(t, "conc-approver2"),
	}
	posID := createPos(t, "Concurrent Approval Cafe")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Race me.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")

	approveURL := fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID)

	// Fire both approvals from goroutines. Failures are reported through the
	// channel; t must not be failed from inside a goroutine.
	errCh := make(chan error, len(approvers))
	for _, approver := range approvers {
		go func(userID string) {
			client := &http.Client{Timeout: 10 * time.Second}
			req, err := http.NewRequest(http.MethodPost, approveURL, nil)
			if err != nil {
				errCh <- err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", userID)
			resp, err := client.Do(req)
			if err != nil {
				errCh <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errCh <- fmt.Errorf("approve as %s: status %d", userID, resp.StatusCode)
				return
			}
			errCh <- nil
		}(approver)
	}
	for range approvers {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}

	// Neither increment may be lost.
	status, body = httpGet(t, fmt.Sprintf("%s/api/v1/reviews/%s", baseURL(), reviewID))
	requireStatus(t, status, http.StatusOK)
	if got := extractFloat(t, body, "data.approval_count"); got != 2 {
		t.Errorf("approval_count after concurrent approvals = %v, want 2", got)
	}
	if extractField(body, "data.approved") != true {
		t.Error("review should be approved after two concurrent approvals")
	}
}

func TestReviewFlow_DuplicateReviewRejected(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "dup-author")
	posID := createPos(t, "Duplicate Cafe")

	status, _ := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "First visit, solid flat white.",
	}, author)
	requireStatus(t, status, http.StatusCreated)

	// A second review of the same POS by the same author is a rule violation.
	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Trying to review again.",
	}, author)
	requireStatus(t, status, http.StatusBadRequest)
	if code := extractString(t, body, "error.code"); code != "VALIDATION" {
		t.Errorf("error code = %q, want VALIDATION", code)
	}
}

func TestReviewFlow_SelfApprovalRejected(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "self-author")
	posID := createPos(t, "Self Approval Cafe")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Would approve my own review if I could.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")

	status, body = httpPostAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID), nil, author)
	requireStatus(t, status, http.StatusBadRequest)
	if code := extractString(t, body, "error.code"); code != "VALIDATION" {
		t.Errorf("error code = %q, want VALIDATION", code)
	}
}

func TestReviewFlow_UnknownApproverRejected(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "unknown-approver-author")
	posID := createPos(t, "Unknown Approver Cafe")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Nobody knows my approver.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")

	status, _ = httpPostAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID), nil, uniqueUUID())
	requireStatus(t, status, http.StatusBadRequest)
}

func TestReviewFlow_UpdatePreservesApprovals(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "update-author")
	approver := registerUser(t, "update-approver")
	posID := createPos(t, "Update Cafe")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Original text.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")

	status, _ = httpPostAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s/approve", baseURL(), reviewID), nil, approver)
	requireStatus(t, status, http.StatusOK)

	// Updating the body keeps the approval progress.
	status, body = httpPutAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s", baseURL(), reviewID), map[string]interface{}{
		"pos_id": posID,
		"body":   "Edited text, same review.",
	}, author)
	requireStatus(t, status, http.StatusOK)
	if got := extractString(t, body, "data.body"); got != "Edited text, same review." {
		t.Errorf("body = %q, want updated text", got)
	}
	if got := extractFloat(t, body, "data.approval_count"); got != 1 {
		t.Errorf("approval_count after update = %v, want 1", got)
	}
}

func TestReviewFlow_UpdateByNonAuthorRejected(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "owner-author")
	intruder := registerUser(t, "owner-intruder")
	posID := createPos(t, "Ownership Cafe")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Mine, and only mine to edit.",
	}, author)
	requireStatus(t, status, http.StatusCreated)
	reviewID := extractString(t, body, "data.id")

	// Another user must not be able to edit the review or take it over.
	status, body = httpPutAsUser(t, fmt.Sprintf("%s/api/v1/reviews/%s", baseURL(), reviewID), map[string]interface{}{
		"pos_id": posID,
		"body":   "Hostile takeover.",
	}, intruder)
	requireStatus(t, status, http.StatusBadRequest)
	if code := extractString(t, body, "error.code"); code != "VALIDATION" {
		t.Errorf("error code = %q, want VALIDATION", code)
	}

	// The review is unchanged and still belongs to the author.
	status, body = httpGet(t, fmt.Sprintf("%s/api/v1/reviews/%s", baseURL(), reviewID))
	requireStatus(t, status, http.StatusOK)
	if got := extractString(t, body, "data.author_id"); got != author {
		t.Errorf("author_id = %q, want %q", got, author)
	}
	if got := extractString(t, body, "data.body"); got != "Mine, and only mine to edit." {
		t.Errorf("body = %q, want original text", got)
	}
}

func TestReviewFlow_MissingPosRejected(t *testing.T) {
	skipIfNotRunning(t)

	author := registerUser(t, "nopos-author")

	status, body := httpPostAsUser(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": uniqueUUID(),
		"body":   "Reviewing a POS that does not exist.",
	}, author)
	requireStatus(t, status, http.StatusNotFound)
	if code := extractString(t, body, "error.code"); code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", code)
	}
}

func TestReviewFlow_RequiresIdentity(t *testing.T) {
	skipIfNotRunning(t)

	posID := createPos(t, "Anonymous Cafe")

	// Without the X-User-ID header review mutations are rejected.
	status, _ := httpPost(t, baseURL()+"/api/v1/reviews", map[string]interface{}{
		"pos_id": posID,
		"body":   "Anonymous review attempt.",
	})
	requireStatus(t, status, http.StatusUnauthorized)
}
