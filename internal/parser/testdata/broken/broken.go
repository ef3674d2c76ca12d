package broken

// Good survives the syntax error below.
func Good() {}

func Bad( {
