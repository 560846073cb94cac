/*
Package domain contains the flow graph data model shared by the editor,
the test suite and the execution engine.

It is pure: no I/O, no shared mutable state. Every entity is a plain
record that serializes directly to JSON, and key presence carries meaning:

  - FlowNode.Router and FlowNode.Wait are omitted when nil.
  - Wait.Timeout is omitted when nil.
  - Exit.Name, Exit.DestinationNodeUUID and SwitchRouter.DefaultExitUUID
    are always present, null when unset.
  - RenderNode.InboundConnections is null until indexed.

# Key Entities

  - Action: closed sum type over send_msg, call_webhook, start_flow, etc.
  - Router: BaseRouter or SwitchRouter with ordered Cases.
  - Exit: named edge to another node, or terminal.
  - Wait: suspension annotation interpreted by the engine.
  - FlowNode / RenderNode: engine shape and editor shape of a node.
  - Flow: ordered nodes plus per-node UI metadata.
*/
package domain
