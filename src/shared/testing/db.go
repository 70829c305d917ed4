package testing

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/hymnbook/hymnbook-be/src/shared/lib/dynamo"
	"github.com/hymnbook/hymnbook-be/src/shared/song/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const UsersTable = "Users"

// mirrors the users table the server owns
type user struct {
	ID       string `dynamo:"id,hash"`
	Name     string `dynamo:"username"`
	Email    string `dynamo:"email"`
	Verified bool   `dynamo:"verified"`
	Role     string `dynamo:"role"`
}

func MakeTestDB(testRegion string) dynamolib.DynamoDBWrapper {
	return dynamolib.Connect(DynamoConfig(testRegion))
}

// SkipWithoutDynamo skips the current suite when nothing is listening
// where DynamoDB local is expected
func SkipWithoutDynamo() {
	host, err := url.Parse(DynamoDBHost)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	conn, err := net.DialTimeout("tcp", host.Host, time.Second)
	if err != nil {
		Skip("DynamoDB local is not reachable at " + DynamoDBHost)
	}

	_ = conn.Close()
}

func ResetDB(db dynamolib.DynamoDBWrapper) {
	DeleteAllTables(db)
	CreateAllTables(db)
	EnsureUsers(db)
}

func BeforeSuiteDB(testRegion string) dynamolib.DynamoDBWrapper {
	db := MakeTestDB(testRegion)
	DeleteAllTables(db)
	return db
}

func AfterSuiteDB(db dynamolib.DynamoDBWrapper) {
	DeleteAllTables(db)
}

func CreateAllTables(db dynamolib.DynamoDBWrapper) {
	err := songstorage.CreateTables(context.Background(), db)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	err = db.CreateTable(UsersTable, user{}).OnDemand(true).Run()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}

func DeleteAllTables(db dynamolib.DynamoDBWrapper) {
	tableNames := ExpectSuccess(db.ListTables().All())

	for _, tableName := range tableNames {
		err := db.Table(tableName).DeleteTable().Run()
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
	}
}
