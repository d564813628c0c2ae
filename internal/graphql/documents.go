package graphql

// Operation is a named GraphQL document with its variables
type Operation struct {
	Variables map[string]any `json:"variables,omitempty"`
	Name      string         `json:"operationName,omitempty"`
	Query     string         `json:"query"`
}

const linkFields = `
  id
  createdAt
  url
  description
  postedBy {
    id
    name
  }
  votes {
    id
    user {
      id
    }
  }
`

// FeedQuery fetches one window of the feed plus the total count
const FeedQuery = `query FeedQuery($first: Int, $skip: Int, $orderBy: LinkOrderByInput) {
  feed(first: $first, skip: $skip, orderBy: $orderBy) {
    links {` + linkFields + `}
    count
  }
}`

// FeedSearchQuery fetches links matching a server-defined filter
const FeedSearchQuery = `query FeedSearchQuery($filter: String!) {
  feed(filter: $filter) {
    links {` + linkFields + `}
  }
}`

// VoteMutation casts a vote and returns the link's resulting vote set
const VoteMutation = `mutation VoteMutation($linkId: ID!) {
  vote(linkId: $linkId) {
    id
    link {
      votes {
        id
        user {
          id
        }
      }
    }
    user {
      id
    }
  }
}`

// PostMutation submits a new link
const PostMutation = `mutation PostMutation($description: String!, $url: String!) {
  post(description: $description, url: $url) {
    id
    createdAt
    url
    description
  }
}`

// LoginMutation exchanges credentials for a token
const LoginMutation = `mutation LoginMutation($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    token
  }
}`

// SignupMutation creates an account and returns a token
const SignupMutation = `mutation SignupMutation($email: String!, $password: String!, $name: String!) {
  signup(email: $email, password: $password, name: $name) {
    token
  }
}`

// NewLinksSubscription is pushed whenever a link is created
const NewLinksSubscription = `subscription NewLinks {
  newLink {
    node {` + linkFields + `}
  }
}`

// NewVotesSubscription is pushed whenever a vote is recorded
const NewVotesSubscription = `subscription NewVotes {
  newVote {
    node {
      id
      link {` + linkFields + `}
      user {
        id
      }
    }
  }
}`
