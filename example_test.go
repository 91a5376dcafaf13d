package socialflow_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/petrijr/socialflow"
)

// Example_friendInvitation demonstrates the full lifecycle of a friend
// request on an in-memory engine.
func Example_friendInvitation() {
	ctx := context.Background()
	eng := socialflow.NewInMemoryEngine()

	alice, err := eng.CreateUser(ctx, socialflow.NewUser{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		log.Fatal(err)
	}
	bob, err := eng.CreateUser(ctx, socialflow.NewUser{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		log.Fatal(err)
	}

	results, err := eng.FriendInvitation(ctx, alice, bob)
	if err != nil {
		log.Fatal(err)
	}
	task := results[0].(*socialflow.Task)

	// Asking twice while the first request is open is a no-op.
	again, _ := eng.FriendInvitation(ctx, alice, bob)
	fmt.Println("duplicate results:", len(again))

	if _, err := eng.FinishTask(ctx, task.ID); err != nil {
		log.Fatal(err)
	}

	u, _ := eng.GetUser(ctx, bob)
	fmt.Println("bob friends:", len(u.Friends), "pending:", len(u.Tasks))
	// Output:
	// duplicate results: 0
	// bob friends: 1 pending: 0
}

// Example_customEvent demonstrates registering handlers for an application
// event type.
func Example_customEvent() {
	ctx := context.Background()
	eng := socialflow.NewInMemoryEngine()

	eng.RegisterEvent("highFive", socialflow.EventHandlers{
		Action: func(ctx context.Context, eng socialflow.Engine, t *socialflow.Task) (any, error) {
			return "sent to " + t.To, nil
		},
		Finish: func(ctx context.Context, eng socialflow.Engine, t *socialflow.Task) (any, error) {
			return "returned by " + t.To, nil
		},
	})

	ann, _ := eng.CreateUser(ctx, socialflow.NewUser{Name: "Ann", Email: "ann@example.com"})
	ben, _ := eng.CreateUser(ctx, socialflow.NewUser{Name: "Ben", Email: "ben@example.com"})

	results, err := eng.CreateTask(ctx, socialflow.TaskRequest{
		From:      ann,
		To:        []string{ben},
		EventType: "highFive",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(results[0] == "sent to "+ben)
	// Output: true
}

// Example_localRunner demonstrates queuing engine calls on a LocalRunner.
func Example_localRunner() {
	ctx := context.Background()

	runner := socialflow.NewLocalRunner()
	if err := runner.StartWorkers(ctx, 2); err != nil {
		log.Fatal(err)
	}
	defer runner.Stop()

	alice, _ := runner.Engine.CreateUser(ctx, socialflow.NewUser{Name: "Alice", Email: "alice@example.com"})
	bob, _ := runner.Engine.CreateUser(ctx, socialflow.NewUser{Name: "Bob", Email: "bob@example.com"})

	err := runner.CreateTaskAsync(ctx, socialflow.TaskRequest{
		From:      alice,
		To:        []string{bob},
		EventType: socialflow.EventFriendInvitation,
	})
	if err != nil {
		log.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pending, _ := runner.Engine.PendingNotifications(ctx, bob); len(pending) == 1 {
			fmt.Println("bob was notified")
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Println("timed out")
	// Output: bob was notified
}
