/*
Package runner drives a casenav session interactively.

The runner keeps the selection path on the client side, as a remote
client would, and turns each user command into a navigation request
whose selections are the full path from the root.

# Key Components

  - Runner: the command loop over a Navigator (the casenav Engine).
  - IOHandler: decouples how screens are shown and commands are read.
  - TextHandler: line-oriented terminal usage.
  - JSONHandler: JSON Lines, for driving the loop from another process.

# Commands

A plain line is a selection: a menu index, an entity id or "action N".
Lines starting with ":" are runner commands: :back, :home, :search
prompt=value..., :next, :prev, :filter text, :details id and :quit.
An empty line redraws the current screen.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if _, err := r.Run(ctx, engine, sessionID); err != nil {
		log.Fatal(err)
	}
*/
package runner
