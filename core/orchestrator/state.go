package orchestrator

// TurnState is the position of an Orchestrator in the turn state machine:
//
//	AwaitingUserInput -> RequestingCompletion -> Done
//	AwaitingUserInput -> RequestingCompletion -> ExecutingTools -> RequestingFinalCompletion -> Done
//
// Done, or a failure at any step, returns to AwaitingUserInput.
type TurnState int32

const (
	AwaitingUserInput TurnState = iota
	RequestingCompletion
	ExecutingTools
	RequestingFinalCompletion
	Done
)

func (s TurnState) String() string {
	switch s {
	case AwaitingUserInput:
		return "awaiting_user_input"
	case RequestingCompletion:
		return "requesting_completion"
	case ExecutingTools:
		return "executing_tools"
	case RequestingFinalCompletion:
		return "requesting_final_completion"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
