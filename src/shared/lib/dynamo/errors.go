package dynamolib

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cockroachdb/errors"
)

const (
	ReasonNone                   = "None"
	ReasonConditionalCheckFailed = "ConditionalCheckFailed"
	ReasonTransactionConflict    = "TransactionConflict"
)

func ConditionalCheckFailed(err error) bool {
	var conditionErr *dynamodb.ConditionalCheckFailedException
	return errors.As(err, &conditionErr)
}

// CancellationReasons lists the per-item reason codes of a cancelled
// transaction, in the order the items were added
func CancellationReasons(err error) ([]string, bool) {
	var cancelErr *dynamodb.TransactionCanceledException
	if !errors.As(err, &cancelErr) {
		return nil, false
	}

	reasons := make([]string, 0, len(cancelErr.CancellationReasons))
	for _, reason := range cancelErr.CancellationReasons {
		if reason == nil {
			reasons = append(reasons, ReasonNone)
			continue
		}

		reasons = append(reasons, aws.StringValue(reason.Code))
	}

	return reasons, true
}

// ItemFailed reports whether the item at the given position in a cancelled
// transaction is the one that failed its condition
func ItemFailed(reasons []string, index int) bool {
	if index < 0 || index >= len(reasons) {
		return false
	}

	return reasons[index] == ReasonConditionalCheckFailed
}
