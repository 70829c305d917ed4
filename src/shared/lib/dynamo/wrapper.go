package dynamolib

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/config"
)

// MaxTransactionItems is the DynamoDB ceiling on items per TransactWriteItems call
const MaxTransactionItems = 100

func NewDynamoDBWrapper(db *dynamo.DB) DynamoDBWrapper {
	return DynamoDBWrapper{DB: db}
}

func Connect(dynamoConfig config.Dynamo) DynamoDBWrapper {
	dbSession := session.Must(session.NewSession())
	db := dynamo.New(dbSession, dynamoConfig.AWSConfig())
	return NewDynamoDBWrapper(db)
}

type DynamoDBWrapper struct {
	*dynamo.DB
}

// Tx starts a write transaction. Items are applied all or nothing, and
// a failing condition on any item cancels the whole batch.
func (d DynamoDBWrapper) Tx() *TxWrapper {
	return &TxWrapper{
		WriteTx: d.DB.WriteTx(),
		count:   0,
	}
}

type TxWrapper struct {
	*dynamo.WriteTx
	count int
}

func (t *TxWrapper) Put(put *dynamo.Put) *TxWrapper {
	t.WriteTx.Put(put)
	t.count++
	return t
}

func (t *TxWrapper) Update(update *dynamo.Update) *TxWrapper {
	t.WriteTx.Update(update)
	t.count++
	return t
}

func (t *TxWrapper) Delete(del *dynamo.Delete) *TxWrapper {
	t.WriteTx.Delete(del)
	t.count++
	return t
}

func (t *TxWrapper) Len() int {
	return t.count
}
