package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCommentCreated(t *testing.T) {
	initialApproved := testutil.ToFloat64(CommentsCreated.WithLabelValues("APPROVED"))
	initialCaps := testutil.ToFloat64(SpamSignals.WithLabelValues("excessive_caps"))
	initialURL := testutil.ToFloat64(SpamSignals.WithLabelValues("url"))

	ObserveCommentCreated("APPROVED", []string{"excessive_caps", "url"})

	assert.Equal(t, initialApproved+1, testutil.ToFloat64(CommentsCreated.WithLabelValues("APPROVED")))
	assert.Equal(t, initialCaps+1, testutil.ToFloat64(SpamSignals.WithLabelValues("excessive_caps")))
	assert.Equal(t, initialURL+1, testutil.ToFloat64(SpamSignals.WithLabelValues("url")))
}

func TestObserveCommentCreatedWithoutSignals(t *testing.T) {
	initial := testutil.ToFloat64(SpamSignals.WithLabelValues("repeated_chars"))
	ObserveCommentCreated("PENDING", nil)
	assert.Equal(t, initial, testutil.ToFloat64(SpamSignals.WithLabelValues("repeated_chars")))
}

func TestObserveModerationAndAuth(t *testing.T) {
	initialSpam := testutil.ToFloat64(ModerationActions.WithLabelValues("SPAM"))
	ObserveModeration("SPAM")
	assert.Equal(t, initialSpam+1, testutil.ToFloat64(ModerationActions.WithLabelValues("SPAM")))

	initialExpired := testutil.ToFloat64(AuthFailures.WithLabelValues("TOKEN_EXPIRED"))
	ObserveAuthFailure("TOKEN_EXPIRED")
	ObserveAuthFailure("TOKEN_EXPIRED")
	assert.Equal(t, initialExpired+2, testutil.ToFloat64(AuthFailures.WithLabelValues("TOKEN_EXPIRED")))
}

func TestSetModerationGauges(t *testing.T) {
	SetModerationGauges(7, 120)
	assert.Equal(t, float64(7), testutil.ToFloat64(CommentsPending))
	assert.Equal(t, float64(120), testutil.ToFloat64(UsersTotal))
}
