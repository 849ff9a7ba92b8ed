package graphql

// schemaSDL はGatewayが公開するGraphQLスキーマ。
const schemaSDL = `
schema {
	query: Query
	mutation: Mutation
}

type User {
	id: ID!
	username: String!
	email: String!
	expenses: [Expense!]!
	total: Float!
}

type Expense {
	id: ID!
	description: String!
	amount: Float!
	category: String!
	createdAt: String!
}

type Auth {
	token: String!
	user: User!
}

type Query {
	me: User
	expenses: [Expense!]!
}

type Mutation {
	addUser(username: String!, email: String!, password: String!): Auth!
	login(email: String!, password: String!): Auth!
	addExpense(description: String!, amount: Float!, category: String!): Expense!
	removeExpense(expenseId: ID!): Boolean!
}
`
