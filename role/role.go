package role

// Admin is the only role value the API recognises. A user without a role
// field is an ordinary user.
const Admin = "admin"
