// Package nexus is a provisioning engine that creates user accounts on
// third-party SaaS vendor web portals through browser automation.
//
// The engine runs a set of vendor drivers sequentially against one
// subject (the new hire being provisioned). Each driver walks a uniform
// lifecycle over the vendor's web portal: authenticate with vaulted
// service credentials, navigate to the user-creation form, fill it from
// the subject's directory profile, submit, classify the outcome, and
// collect evidence. Outcomes that need a human decision, such as
// duplicate-account conflicts or interactive MFA, surface through an
// interaction broker to whatever front end embeds the engine.
//
// # Core pieces
//
//   - Engine: the front door; wires registry, drivers, vault, runtime,
//     and report sinks (this package)
//   - vendorreg: the vendor manifest and enabled/disabled registry
//   - driver: the driver contract, shared lifecycle, outcome
//     classification, and error taxonomy
//   - broker: the single-slot operator interaction rendezvous
//   - vault: credential resolution with per-run caching
//   - directory: the corporate identity directory interface
//   - infer: cost center, branch, role, and permission inference
//   - run: the sequential orchestrator, progress events, and summary
//   - report: summary serialization, evidence sinks, pub/sub hand-off
//
// # Getting started
//
//	engine, err := nexus.NewEngine(
//	    nexus.WithConfig("engine.yaml"),
//	    nexus.WithSecrets(kvClient),
//	    nexus.WithRuntime(rt),
//	    nexus.WithDrivers(drivers...),
//	    nexus.WithDirectory(dirClient),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	go func() {
//	    for ev := range engine.Events() {
//	        // render progress, answer ev.Question when present
//	    }
//	}()
//
//	summary, err := engine.RunForSubject(ctx, subjectID, nil)
//
// The engine itself holds no UI: progress streams over Events, and
// operator decisions come back by answering the broker questions
// delivered on Questions (and mirrored on the event stream).
package nexus
