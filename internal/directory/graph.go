package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/groups"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	odataerrors "github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/pkg/errors"
)

const (
	// memberPageSize is the practical maximum page size for member listings.
	memberPageSize = 999

	// cutoffLayout renders the cutoff with second precision, no fractional
	// seconds, as the filter expects.
	cutoffLayout = "2006-01-02T15:04:05Z"
)

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// NewGraphClient builds a Graph service client from a resolved credential.
func NewGraphClient(cred azcore.TokenCredential) (*msgraphsdk.GraphServiceClient, error) {
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, graphScopes)
	if err != nil {
		return nil, errors.Wrap(err, "create graph client")
	}
	return client, nil
}

// Graph implements Directory against Microsoft Graph.
type Graph struct {
	client *msgraphsdk.GraphServiceClient
}

func NewGraph(client *msgraphsdk.GraphServiceClient) *Graph {
	return &Graph{client: client}
}

// dormantFilter builds the server-side filter for accounts whose last
// sign-in is at or before the cutoff. Accounts without recorded sign-in
// activity follow the backend's null semantics; they are not reinterpreted
// here.
func dormantFilter(cutoff time.Time) string {
	return fmt.Sprintf("signInActivity/lastSignInDateTime le %s", cutoff.UTC().Format(cutoffLayout))
}

func (g *Graph) DormantUsers(cutoff time.Time) Pager {
	return &userPager{graph: g, cutoff: cutoff}
}

func (g *Graph) GroupMembers(groupID string) Pager {
	return &memberPager{graph: g, groupID: groupID}
}

// DeleteAccounts submits the operations as one $batch request. The combined
// request either succeeds or fails as a unit; per-operation statuses from a
// successful response are surfaced in the outcome, keyed by correlation id.
func (g *Graph) DeleteAccounts(ctx context.Context, ops []DeleteOperation) (*BatchOutcome, error) {
	adapter := g.client.GetAdapter()
	batch := msgraphcore.NewBatchRequest(adapter)

	for _, op := range ops {
		requestInfo, err := g.client.Users().ByUserId(op.AccountID).ToDeleteRequestInformation(ctx, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "build delete request for account %s", op.AccountID)
		}
		step, err := batch.AddBatchRequestStep(*requestInfo)
		if err != nil {
			return nil, errors.Wrap(err, "add delete operation to batch")
		}
		correlationID := op.CorrelationID
		step.SetId(&correlationID)
	}

	response, err := batch.Send(ctx, adapter)
	if err != nil {
		return nil, errors.Wrap(graphError(err), "submit delete batch")
	}

	outcome := &BatchOutcome{Statuses: make(map[string]int32, len(ops))}
	for _, item := range response.GetResponses() {
		if item.GetId() == nil || item.GetStatus() == nil {
			continue
		}
		outcome.Statuses[*item.GetId()] = *item.GetStatus()
	}
	return outcome, nil
}

// userPager pages through the filtered, field-limited user listing by
// following @odata.nextLink cursors.
type userPager struct {
	graph   *Graph
	cutoff  time.Time
	next    *string
	started bool
}

func (p *userPager) Next(ctx context.Context) ([]Account, bool, error) {
	var response models.UserCollectionResponseable
	var err error

	switch {
	case !p.started:
		p.started = true
		response, err = p.graph.firstUserPage(ctx, p.cutoff)
	case p.next != nil:
		response, err = users.NewUsersRequestBuilder(*p.next, p.graph.client.GetAdapter()).Get(ctx, nil)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(graphError(err), "list dormant users")
	}

	accounts := make([]Account, 0, len(response.GetValue()))
	for _, user := range response.GetValue() {
		if user.GetId() == nil {
			continue
		}
		account := Account{ID: *user.GetId()}
		if name := user.GetDisplayName(); name != nil {
			account.DisplayName = *name
		}
		accounts = append(accounts, account)
	}
	p.next = response.GetOdataNextLink()
	return accounts, p.next != nil, nil
}

func (g *Graph) firstUserPage(ctx context.Context, cutoff time.Time) (models.UserCollectionResponseable, error) {
	filter := dormantFilter(cutoff)
	count := true
	// Filtering on signInActivity requires advanced query support.
	headers := abstractions.NewRequestHeaders()
	headers.Add("ConsistencyLevel", "eventual")

	return g.client.Users().Get(ctx, &users.UsersRequestBuilderGetRequestConfiguration{
		Headers: headers,
		QueryParameters: &users.UsersRequestBuilderGetQueryParameters{
			Filter: &filter,
			Select: []string{"id", "displayName"},
			Count:  &count,
		},
	})
}

// memberPager pages through one group's membership, id only, at the maximum
// page size.
type memberPager struct {
	graph   *Graph
	groupID string
	next    *string
	started bool
}

func (p *memberPager) Next(ctx context.Context) ([]Account, bool, error) {
	var response models.DirectoryObjectCollectionResponseable
	var err error

	switch {
	case !p.started:
		p.started = true
		response, err = p.graph.firstMemberPage(ctx, p.groupID)
	case p.next != nil:
		response, err = groups.NewItemMembersRequestBuilder(*p.next, p.graph.client.GetAdapter()).Get(ctx, nil)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(graphError(err), "list members of group %s", p.groupID)
	}

	accounts := make([]Account, 0, len(response.GetValue()))
	for _, member := range response.GetValue() {
		if member.GetId() == nil {
			continue
		}
		accounts = append(accounts, Account{ID: *member.GetId()})
	}
	p.next = response.GetOdataNextLink()
	return accounts, p.next != nil, nil
}

func (g *Graph) firstMemberPage(ctx context.Context, groupID string) (models.DirectoryObjectCollectionResponseable, error) {
	top := int32(memberPageSize)
	return g.client.Groups().ByGroupId(groupID).Members().Get(ctx, &groups.ItemMembersRequestBuilderGetRequestConfiguration{
		QueryParameters: &groups.ItemMembersRequestBuilderGetQueryParameters{
			Select: []string{"id"},
			Top:    &top,
		},
	})
}

// graphError unwraps OData error details into a plain error so log lines
// carry the backend's code and message instead of a generic SDK string.
func graphError(err error) error {
	var odataErr *odataerrors.ODataError
	if !errors.As(err, &odataErr) {
		return err
	}
	mainError := odataErr.GetErrorEscaped()
	if mainError == nil {
		return err
	}
	code, message := "", ""
	if mainError.GetCode() != nil {
		code = *mainError.GetCode()
	}
	if mainError.GetMessage() != nil {
		message = *mainError.GetMessage()
	}
	return errors.Errorf("graph error %s: %s", code, message)
}
