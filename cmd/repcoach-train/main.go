package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ayusman/repcoach/internal/classify"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/features"
	"github.com/ayusman/repcoach/internal/signal"
)

func main() {
	out := flag.String("out", "model.json", "path for the trained model artifact")
	perClass := flag.Int("per-class", 60, "training traces per exercise")
	holdout := flag.Int("holdout", 10, "evaluation traces per exercise")
	trees := flag.Int("trees", classify.DefaultNumTrees, "number of trees in the forest")
	depth := flag.Int("depth", classify.DefaultMaxDepth, "maximum tree depth")
	seed := flag.Int64("seed", 42, "synthesis and training seed")
	flag.Parse()

	fmt.Println("RepCoach - Classifier Training")

	trainVectors, trainLabels := synthesizeSet(*perClass, *seed)
	evalVectors, evalLabels := synthesizeSet(*holdout, *seed+100000)
	fmt.Printf("Synthesized %d training and %d evaluation sets\n", len(trainVectors), len(evalVectors))

	trainer := classify.NewTrainer(classify.TrainerConfig{
		NumTrees: *trees,
		MaxDepth: *depth,
		Seed:     *seed,
	})
	model, err := trainer.Train(trainVectors, trainLabels)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	accuracy, err := classify.Accuracy(model, evalVectors, evalLabels)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}
	fmt.Printf("Holdout accuracy: %.1f%%\n", accuracy*100)

	if err := model.Save(*out); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}
	fmt.Printf("Model written to: %s\n", *out)
}

// synthesizeSet generates labeled feature vectors covering every trackable
// exercise, varying duration, rate and noise so the forest does not just
// memorize one recording geometry.
func synthesizeSet(perClass int, seed int64) ([]features.Vector, []exercise.Type) {
	synth := signal.NewSynthesizer()
	extractor := features.NewExtractor()
	rng := rand.New(rand.NewSource(seed))

	var vectors []features.Vector
	var labels []exercise.Type

	for _, ex := range exercise.All() {
		for i := 0; i < perClass; i++ {
			durationSec := 6 + rng.Float64()*10
			sampleRateHz := 40 + rng.Float64()*40
			noiseLevel := 0.02 + rng.Float64()*0.13

			trace, err := synth.Generate(ex, durationSec, sampleRateHz, noiseLevel, rng.Int63())
			if err != nil {
				log.Fatalf("Failed to synthesize %s trace: %v", ex, err)
			}

			vector, err := extractor.Extract(trace)
			if err != nil {
				log.Fatalf("Failed to extract features: %v", err)
			}

			vectors = append(vectors, vector)
			labels = append(labels, ex)
		}
	}

	return vectors, labels
}
